package navmesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/worldkit/internal/model"
)

// NoNeighbor marks a polygon edge on the mesh boundary.
const NoNeighbor int32 = -1

// Polygon is a walkable triangle. Neighbors[i] is the polygon across the
// edge from Vertices[i] to Vertices[(i+1)%3].
type Polygon struct {
	Vertices  [3]int32
	Neighbors [3]int32
}

// NavMesh is baked walkable geometry. Vertices keep their height in Y;
// point location and pathfinding work on the XZ plane.
type NavMesh struct {
	Vertices []mgl64.Vec3
	Polygons []Polygon
	// Delta is how far around a query point the mesh is searched when the
	// point itself is not on any polygon.
	Delta float64
}

// PolygonCount returns number of walkable polygons.
func (n *NavMesh) PolygonCount() int {
	return len(n.Polygons)
}

// IsEmpty reports whether the mesh has no walkable polygon.
func (n *NavMesh) IsEmpty() bool {
	return len(n.Polygons) == 0
}

// Centroid returns the centroid of polygon i.
func (n *NavMesh) Centroid(i int) mgl64.Vec3 {
	p := n.Polygons[i]
	a, b, c := n.Vertices[p.Vertices[0]], n.Vertices[p.Vertices[1]], n.Vertices[p.Vertices[2]]
	return a.Add(b).Add(c).Mul(1.0 / 3.0)
}

type weldKey struct {
	x, y, z int64
}

type edgeKey struct {
	a, b int32
}

type edgeRef struct {
	poly int32
	edge int8
}

// Bake converts triangle geometry into a navigation mesh.
// Coincident vertices are welded, triangles with no area on the XZ plane are
// dropped and polygons sharing an edge become neighbors.
func Bake(mesh *model.Mesh, delta float64) (*NavMesh, error) {
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("baking navmesh: %w", err)
	}

	nm := &NavMesh{
		Vertices: make([]mgl64.Vec3, 0, len(mesh.Positions)),
		Polygons: make([]Polygon, 0, mesh.TriangleCount()),
		Delta:    delta,
	}

	welded := make(map[weldKey]int32, len(mesh.Positions))
	remap := make([]int32, len(mesh.Positions))
	for i, p := range mesh.Positions {
		key := weldKey{quantize(p[0]), quantize(p[1]), quantize(p[2])}
		idx, ok := welded[key]
		if !ok {
			idx = int32(len(nm.Vertices))
			nm.Vertices = append(nm.Vertices, p)
			welded[key] = idx
		}
		remap[i] = idx
	}

	edges := make(map[edgeKey][]edgeRef, len(mesh.Indices))
	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		v := [3]int32{remap[mesh.Indices[t]], remap[mesh.Indices[t+1]], remap[mesh.Indices[t+2]]}
		if v[0] == v[1] || v[1] == v[2] || v[0] == v[2] {
			continue
		}
		if math.Abs(signedArea(nm.Vertices[v[0]], nm.Vertices[v[1]], nm.Vertices[v[2]])) < MinTriangleArea {
			continue
		}

		poly := int32(len(nm.Polygons))
		nm.Polygons = append(nm.Polygons, Polygon{
			Vertices:  v,
			Neighbors: [3]int32{NoNeighbor, NoNeighbor, NoNeighbor},
		})
		for e := range 3 {
			k := newEdgeKey(v[e], v[(e+1)%3])
			edges[k] = append(edges[k], edgeRef{poly: poly, edge: int8(e)})
		}
	}

	// Only manifold edges (exactly two polygons) connect polygons.
	for _, refs := range edges {
		if len(refs) != 2 {
			continue
		}
		a, b := refs[0], refs[1]
		nm.Polygons[a.poly].Neighbors[a.edge] = b.poly
		nm.Polygons[b.poly].Neighbors[b.edge] = a.poly
	}

	return nm, nil
}

func quantize(v float64) int64 {
	return int64(math.Round(v / WeldEpsilon))
}

func newEdgeKey(a, b int32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// signedArea is twice the signed area of triangle abc projected onto XZ.
func signedArea(a, b, c mgl64.Vec3) float64 {
	return (b[0]-a[0])*(c[2]-a[2]) - (c[0]-a[0])*(b[2]-a[2])
}
