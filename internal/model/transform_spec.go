package model

import "github.com/go-gl/mathgl/mgl64"

// TransformSpec is the authored (YAML) form of a Transform.
// Rotation is a quaternion in x, y, z, w order; omitted rotation and scale
// default to identity.
type TransformSpec struct {
	Translation [3]float64  `yaml:"translation"`
	Rotation    *[4]float64 `yaml:"rotation,omitempty"`
	Scale       *[3]float64 `yaml:"scale,omitempty"`
}

// Transform converts the spec into a Transform.
func (s TransformSpec) Transform() Transform {
	t := IdentityTransform()
	t.Translation = mgl64.Vec3(s.Translation)
	if s.Rotation != nil {
		r := s.Rotation
		t.Rotation = mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()
	}
	if s.Scale != nil {
		t.Scale = mgl64.Vec3(*s.Scale)
	}
	return t
}
