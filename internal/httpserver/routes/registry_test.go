package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisteredGroups(t *testing.T) {
	assert.ElementsMatch(t, []string{"portal", "probes"}, Names())
}

func TestRegisterTwicePanics(t *testing.T) {
	saved := registry
	t.Cleanup(func() { registry = saved })

	assert.Panics(t, func() { Register("portal", registerPortal) })
}
