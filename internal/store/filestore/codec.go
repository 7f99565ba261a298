package filestore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/portal/internal/domain"
)

// Encode renders cfg the way it is stored on disk: 4-space indent, non-ASCII
// and HTML characters kept literal, trailing newline. Keys keep the order they
// were read in, and keys the file never had are not added.
func Encode(cfg *domain.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a stored document.
func Decode(data []byte) (*domain.Config, error) {
	var cfg domain.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// RevisionOf identifies a stored document by content.
func RevisionOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
