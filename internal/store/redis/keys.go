package redis

import "fmt"

const (
	// KeyPrefixSession is the prefix for visitor session keys
	KeyPrefixSession = "portal:session:"
)

// SessionKey returns the Redis key for a session by ID
func SessionKey(id string) string {
	return KeyPrefixSession + id
}

// ExtractSessionID extracts the session ID from a Redis key
func ExtractSessionID(key string) (string, error) {
	if len(key) <= len(KeyPrefixSession) {
		return "", fmt.Errorf("invalid session key: %s", key)
	}
	return key[len(KeyPrefixSession):], nil
}
