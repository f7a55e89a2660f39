package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a placement relative to a parent: translation, rotation, scale.
// The zero value is degenerate (zero scale, zero quaternion); use IdentityTransform.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// IdentityTransform returns a transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// NewTransform creates a transform from its three components.
func NewTransform(translation mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) Transform {
	return Transform{
		Translation: translation,
		Rotation:    rotation,
		Scale:       scale,
	}
}

// FromTranslation returns an identity transform moved to (x, y, z).
func FromTranslation(x, y, z float64) Transform {
	t := IdentityTransform()
	t.Translation = mgl64.Vec3{x, y, z}
	return t
}

// WithScale returns a copy of t with the given scale.
func (t Transform) WithScale(x, y, z float64) Transform {
	t.Scale = mgl64.Vec3{x, y, z}
	return t
}

// WithRotation returns a copy of t with the given rotation.
func (t Transform) WithRotation(q mgl64.Quat) Transform {
	t.Rotation = q
	return t
}

// Mul composes t (parent) with child: the result places child's local space
// inside t's space, so Mul(a, b).TransformPoint(p) == a.TransformPoint(b.TransformPoint(p))
// for transforms without non-uniform scale under rotation.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Translation: t.TransformPoint(child.Translation),
		Rotation:    t.Rotation.Mul(child.Rotation),
		Scale:       mulElem(t.Scale, child.Scale),
	}
}

// TransformPoint applies scale, rotation and translation to p.
func (t Transform) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(mulElem(t.Scale, p)).Add(t.Translation)
}

// TransformVector applies scale and rotation to v, ignoring translation.
func (t Transform) TransformVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(mulElem(t.Scale, v))
}

// Matrix returns the affine matrix T * R * S.
func (t Transform) Matrix() mgl64.Mat4 {
	tr := mgl64.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	sc := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return tr.Mul4(t.Rotation.Mat4()).Mul4(sc)
}

// ApproxEqual reports whether every component of t and o differs by less than eps.
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	return near(t.Translation, o.Translation, eps) &&
		near(t.Rotation.V, o.Rotation.V, eps) &&
		math.Abs(t.Rotation.W-o.Rotation.W) < eps &&
		near(t.Scale, o.Scale, eps)
}

func near(a, b mgl64.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= eps {
			return false
		}
	}
	return true
}

func mulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
