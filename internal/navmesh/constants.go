package navmesh

// Marker is the label tag that makes a node a navigation mesh source.
// Scene content depends on this exact string.
const Marker = "[navmesh]"

// Bake configuration.
const (
	// DefaultDelta is the point-location search distance stored on baked meshes.
	DefaultDelta = 10.0

	// WeldEpsilon is the distance under which vertices are merged while baking.
	WeldEpsilon = 1e-4

	// MinTriangleArea drops triangles that are degenerate once projected
	// onto the walkable XZ plane (walls, slivers).
	MinTriangleArea = 1e-9
)

// Pathfinding configuration.
const (
	MaxPathIterations = 10000
	PathSampleStep    = 0.25
	MaxPathSamples    = 1024
)
