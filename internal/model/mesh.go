package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidMesh is returned when mesh indices do not describe a triangle list.
var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh is indexed triangle geometry in its own local space.
type Mesh struct {
	Positions []mgl64.Vec3 `yaml:"positions"`
	Normals   []mgl64.Vec3 `yaml:"normals,omitempty"`
	Indices   []uint32     `yaml:"indices"`
}

// TriangleCount returns number of triangles described by Indices.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate checks that indices form whole triangles and stay in range.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals for %d positions", ErrInvalidMesh, len(m.Normals), len(m.Positions))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("%w: index %d at %d out of range (%d positions)", ErrInvalidMesh, idx, i, len(m.Positions))
		}
	}
	return nil
}

// Transformed returns a copy of m with positions moved through t and
// normals rotated into the new frame. The receiver is not modified.
func (m *Mesh) Transformed(t Transform) *Mesh {
	out := &Mesh{
		Positions: make([]mgl64.Vec3, len(m.Positions)),
		Indices:   append([]uint32(nil), m.Indices...),
	}
	for i, p := range m.Positions {
		out.Positions[i] = t.TransformPoint(p)
	}

	if len(m.Normals) > 0 {
		// Normals go through the inverse scale so they stay perpendicular to faces.
		inv := mgl64.Vec3{safeInv(t.Scale[0]), safeInv(t.Scale[1]), safeInv(t.Scale[2])}
		out.Normals = make([]mgl64.Vec3, len(m.Normals))
		for i, n := range m.Normals {
			out.Normals[i] = t.Rotation.Rotate(mulElem(inv, n)).Normalize()
		}
	}
	return out
}

func safeInv(v float64) float64 {
	if v == 0 {
		return 0
	}
	return 1 / v
}
