package navmesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const containsEpsilon = 1e-9

// searchOffsets are the unit directions tried at Delta when a point is off mesh.
var searchOffsets = [8]mgl64.Vec2{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{math.Sqrt2 / 2, math.Sqrt2 / 2}, {-math.Sqrt2 / 2, math.Sqrt2 / 2},
	{math.Sqrt2 / 2, -math.Sqrt2 / 2}, {-math.Sqrt2 / 2, -math.Sqrt2 / 2},
}

// FindPolygon returns the polygon containing point p (x, z), edges included.
func (n *NavMesh) FindPolygon(p mgl64.Vec2) (int, bool) {
	for i := range n.Polygons {
		if n.contains(i, p) {
			return i, true
		}
	}
	return -1, false
}

// Locate finds a polygon for p, searching at distance Delta around p when p
// itself is off the mesh. Returns the polygon and the point actually located.
func (n *NavMesh) Locate(p mgl64.Vec2) (int, mgl64.Vec2, bool) {
	if i, ok := n.FindPolygon(p); ok {
		return i, p, true
	}
	if n.Delta <= 0 {
		return -1, p, false
	}
	for _, dir := range searchOffsets {
		q := p.Add(dir.Mul(n.Delta))
		if i, ok := n.FindPolygon(q); ok {
			return i, q, true
		}
	}
	return -1, p, false
}

// IsInMesh reports whether p (x, z) is on the mesh, or whether one of the
// eight points at distance Delta around it is. Points closer than Delta to
// the mesh can still miss when every sample overshoots it.
func (n *NavMesh) IsInMesh(p mgl64.Vec2) bool {
	_, _, ok := n.Locate(p)
	return ok
}

// Project locates p on the mesh and returns it with the mesh height.
func (n *NavMesh) Project(p mgl64.Vec3) (mgl64.Vec3, bool) {
	i, q, ok := n.Locate(mgl64.Vec2{p[0], p[2]})
	if !ok {
		return p, false
	}
	return mgl64.Vec3{q[0], n.height(i, q), q[1]}, true
}

// contains tests p against polygon i regardless of winding.
func (n *NavMesh) contains(i int, p mgl64.Vec2) bool {
	poly := n.Polygons[i]
	a := xz(n.Vertices[poly.Vertices[0]])
	b := xz(n.Vertices[poly.Vertices[1]])
	c := xz(n.Vertices[poly.Vertices[2]])

	d1 := cross2(a, b, p)
	d2 := cross2(b, c, p)
	d3 := cross2(c, a, p)

	hasNeg := d1 < -containsEpsilon || d2 < -containsEpsilon || d3 < -containsEpsilon
	hasPos := d1 > containsEpsilon || d2 > containsEpsilon || d3 > containsEpsilon
	return !(hasNeg && hasPos)
}

// height interpolates vertex heights of polygon i at p.
func (n *NavMesh) height(i int, p mgl64.Vec2) float64 {
	poly := n.Polygons[i]
	va, vb, vc := n.Vertices[poly.Vertices[0]], n.Vertices[poly.Vertices[1]], n.Vertices[poly.Vertices[2]]
	a, b, c := xz(va), xz(vb), xz(vc)

	area := cross2(a, b, c)
	if area == 0 {
		return va[1]
	}
	wa := cross2(b, c, p) / area
	wb := cross2(c, a, p) / area
	wc := 1 - wa - wb
	return wa*va[1] + wb*vb[1] + wc*vc[1]
}

func xz(v mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{v[0], v[2]}
}

func cross2(a, b, p mgl64.Vec2) float64 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}
