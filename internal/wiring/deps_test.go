package wiring_test

import (
	"testing"

	"github.com/grindlemire/graft"
	_ "go.trai.ch/ward/internal/wiring"
)

// TestDepsValid verifies that every registered Graft node declares its
// dependencies consistently with the imports of its package.
func TestDepsValid(t *testing.T) {
	graft.AssertDepsValid(t, "../../internal")
}
