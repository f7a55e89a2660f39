package testutil

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

// AssertVec3InDelta compares want and got component by component with an
// absolute tolerance. Unlike mgl64's ApproxEqualThreshold it does not
// tighten the tolerance when one side is exactly zero.
func AssertVec3InDelta(t *testing.T, want, got mgl64.Vec3, delta float64) bool {
	t.Helper()
	ok := true
	for i := range want {
		ok = assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got) && ok
	}
	return ok
}
