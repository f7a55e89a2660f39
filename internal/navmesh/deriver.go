package navmesh

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/worldkit/internal/model"
)

// ErrMissingMesh means a node references a mesh asset that does not resolve.
var ErrMissingMesh = errors.New("missing mesh asset")

// Hierarchy is the read-only scene view the deriver needs.
type Hierarchy interface {
	TransformSource
	Children(id model.NodeID) []model.NodeID
	Mesh(id model.NodeID) (model.AssetHandle, bool)
}

// MeshSource resolves mesh handles to geometry.
type MeshSource interface {
	Get(h model.AssetHandle) (*model.Mesh, bool)
}

// ArtifactSink stores baked navigation meshes and attaches them to nodes.
type ArtifactSink interface {
	AddNavMesh(nm *NavMesh) model.AssetHandle
	AttachNavMesh(id model.NodeID, h model.AssetHandle) error
}

// BakeResult describes one baked navigation mesh.
type BakeResult struct {
	Marker      model.NodeID
	MarkerLabel string
	Node        model.NodeID // node that supplied the geometry and holds the artifact
	Handle      model.AssetHandle
	NavMesh     *NavMesh
}

// Deriver bakes navigation meshes for marker nodes as their labels appear.
// Not safe for concurrent use; the tick driver owns it.
type Deriver struct {
	hierarchy Hierarchy
	meshes    MeshSource
	sink      ArtifactSink
	delta     float64
	seen      map[model.NodeID]struct{}
}

// NewDeriver creates deriver baking with the given delta.
func NewDeriver(hierarchy Hierarchy, meshes MeshSource, sink ArtifactSink, delta float64) *Deriver {
	return &Deriver{
		hierarchy: hierarchy,
		meshes:    meshes,
		sink:      sink,
		delta:     delta,
		seen:      make(map[model.NodeID]struct{}),
	}
}

// Delta returns the bake delta
func (d *Deriver) Delta() float64 {
	return d.delta
}

// Derive processes newly labeled nodes. Each marker node is baked at most once.
// A failing bake is reported in the joined error and does not stop the others.
func (d *Deriver) Derive(labels []model.NodeLabel) ([]BakeResult, error) {
	var (
		results []BakeResult
		errs    []error
	)

	for _, l := range labels {
		if !IsMarker(l.Label) {
			continue
		}
		if _, done := d.seen[l.Node]; done {
			continue
		}
		d.seen[l.Node] = struct{}{}

		baked, err := d.bakeMarker(l)
		results = append(results, baked...)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}

// bakeMarker bakes every mesh under marker node l.Node.
//
// Every descendant mesh goes through the marker's world transform only, as
// if it sat directly under the marker; local offsets of intermediate
// descendants are not composed.
func (d *Deriver) bakeMarker(l model.NodeLabel) ([]BakeResult, error) {
	world, err := WorldTransform(d.hierarchy, l.Node)
	if err != nil {
		slog.Error("navmesh bake aborted", "marker", l.Node, "label", l.Label, "error", err)
		return nil, fmt.Errorf("baking %q: %w", l.Label, err)
	}

	var (
		results []BakeResult
		errs    []error
	)
	for _, child := range d.descendantMeshes(l.Node) {
		res, err := d.bakeMesh(l, child, world)
		if err != nil {
			slog.Error("navmesh bake failed", "marker", l.Node, "node", child, "error", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}

	if len(results) > 0 {
		slog.Info("navmesh baked", "marker", l.Node, "label", l.Label, "meshes", len(results))
	} else if len(errs) == 0 {
		slog.Debug("navmesh marker without meshes", "marker", l.Node, "label", l.Label)
	}

	return results, errors.Join(errs...)
}

func (d *Deriver) bakeMesh(l model.NodeLabel, node model.NodeID, world model.Transform) (BakeResult, error) {
	handle, _ := d.hierarchy.Mesh(node)
	mesh, ok := d.meshes.Get(handle)
	if !ok {
		return BakeResult{}, fmt.Errorf("baking %q node %d: handle %d: %w", l.Label, node, handle, ErrMissingMesh)
	}

	nm, err := Bake(mesh.Transformed(world), d.delta)
	if err != nil {
		return BakeResult{}, fmt.Errorf("baking %q node %d: %w", l.Label, node, err)
	}

	h := d.sink.AddNavMesh(nm)
	if err := d.sink.AttachNavMesh(node, h); err != nil {
		return BakeResult{}, fmt.Errorf("attaching navmesh to %d: %w", node, err)
	}

	return BakeResult{
		Marker:      l.Node,
		MarkerLabel: l.Label,
		Node:        node,
		Handle:      h,
		NavMesh:     nm,
	}, nil
}

// descendantMeshes returns descendants of root carrying a mesh, depth first.
func (d *Deriver) descendantMeshes(root model.NodeID) []model.NodeID {
	var found []model.NodeID

	stack := append([]model.NodeID(nil), d.hierarchy.Children(root)...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := d.hierarchy.Mesh(id); ok {
			found = append(found, id)
		}
		stack = append(stack, d.hierarchy.Children(id)...)
	}
	return found
}
