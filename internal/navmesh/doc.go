// Package navmesh derives walkable navigation meshes from scene geometry.
//
// Any node whose label contains the [navmesh] marker (case-insensitive) is
// the root of a navigable region: every mesh in its descendant subtree is
// moved through the marker's world transform, baked into a NavMesh and
// attached back to the node that supplied the geometry.
//
// Baking runs once per marker node, when its label is first observed.
// Later changes to the subtree are not re-baked.
package navmesh
