package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/worldkit/internal/model"
	"github.com/udisondev/worldkit/internal/navmesh"
	"github.com/udisondev/worldkit/internal/spawn"
)

var (
	// ErrNodeNotFound is returned for ids that do not refer to a node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrCycle is returned when a reparent would make a node its own ancestor.
	ErrCycle = errors.New("reparent would create a cycle")
)

type node struct {
	name     string
	named    bool
	parent   model.NodeID
	children []model.NodeID
	local    model.Transform
	mesh     model.AssetHandle
	navMesh  model.AssetHandle
}

// Graph is an arena-backed scene hierarchy. Nodes are addressed by index and
// are never removed, so a NodeID stays valid for the graph's lifetime.
// Thread-safe.
type Graph struct {
	mu    sync.RWMutex
	nodes []*node

	meshes    *Assets[model.Mesh]
	navMeshes *Assets[navmesh.NavMesh]

	added         Queue[model.NodeLabel]
	parentChanges Queue[spawn.ParentChangeEvent]
	duplications  Queue[spawn.DuplicationEvent]
}

// NewGraph creates an empty graph with its own asset stores.
func NewGraph() *Graph {
	return &Graph{
		nodes:     make([]*node, 0, 64),
		meshes:    NewAssets[model.Mesh](),
		navMeshes: NewAssets[navmesh.NavMesh](),
	}
}

// Meshes returns the mesh asset store.
func (g *Graph) Meshes() *Assets[model.Mesh] {
	return g.meshes
}

// NavMeshes returns the baked navigation mesh store.
func (g *Graph) NavMeshes() *Assets[navmesh.NavMesh] {
	return g.navMeshes
}

// Len returns number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// AddNode creates node under parent (model.NoNode for a root).
// A non-empty name is reported through DrainAdded.
func (g *Graph) AddNode(name string, parent model.NodeID, local model.Transform) (model.NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.addNodeLocked(name, parent, local)
}

func (g *Graph) addNodeLocked(name string, parent model.NodeID, local model.Transform) (model.NodeID, error) {
	if parent != model.NoNode && g.nodeLocked(parent) == nil {
		return model.NoNode, fmt.Errorf("adding %q under %d: %w", name, parent, ErrNodeNotFound)
	}

	id := model.NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &node{
		parent: parent,
		local:  local,
	})
	if parent != model.NoNode {
		p := g.nodes[parent]
		p.children = append(p.children, id)
	}
	if name != "" {
		g.setNameLocked(id, name)
	}
	return id, nil
}

// SetName labels node. Only the first label of a node is reported as added.
func (g *Graph) SetName(id model.NodeID, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.nodeLocked(id) == nil {
		return fmt.Errorf("naming %d: %w", id, ErrNodeNotFound)
	}
	g.setNameLocked(id, name)
	return nil
}

func (g *Graph) setNameLocked(id model.NodeID, name string) {
	n := g.nodes[id]
	n.name = name
	if n.named {
		return
	}
	n.named = true
	g.added.Push(model.NodeLabel{Node: id, Label: name})
}

// SetLocalTransform replaces node's local transform.
func (g *Graph) SetLocalTransform(id model.NodeID, local model.Transform) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.nodeLocked(id)
	if n == nil {
		return fmt.Errorf("setting transform of %d: %w", id, ErrNodeNotFound)
	}
	n.local = local
	return nil
}

// SetMesh attaches a mesh asset to node.
func (g *Graph) SetMesh(id model.NodeID, h model.AssetHandle) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.nodeLocked(id)
	if n == nil {
		return fmt.Errorf("setting mesh of %d: %w", id, ErrNodeNotFound)
	}
	n.mesh = h
	return nil
}

// AddNavMesh stores a baked navigation mesh and returns its handle.
func (g *Graph) AddNavMesh(nm *navmesh.NavMesh) model.AssetHandle {
	return g.navMeshes.Add(nm)
}

// AttachNavMesh attaches a baked navigation mesh to node.
func (g *Graph) AttachNavMesh(id model.NodeID, h model.AssetHandle) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.nodeLocked(id)
	if n == nil {
		return fmt.Errorf("attaching navmesh to %d: %w", id, ErrNodeNotFound)
	}
	n.navMesh = h
	return nil
}

// NavMesh returns the navigation mesh handle attached to node.
func (g *Graph) NavMesh(id model.NodeID) (model.AssetHandle, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.nodeLocked(id)
	if n == nil || !n.navMesh.Valid() {
		return 0, false
	}
	return n.navMesh, true
}

// Parent returns node's parent; false for roots and unknown nodes.
func (g *Graph) Parent(id model.NodeID) (model.NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.nodeLocked(id)
	if n == nil || n.parent == model.NoNode {
		return model.NoNode, false
	}
	return n.parent, true
}

// Children returns a copy of node's children in insertion order.
func (g *Graph) Children(id model.NodeID) []model.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.nodeLocked(id)
	if n == nil || len(n.children) == 0 {
		return nil
	}
	return append([]model.NodeID(nil), n.children...)
}

// LocalTransform returns node's local transform.
func (g *Graph) LocalTransform(id model.NodeID) (model.Transform, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.nodeLocked(id)
	if n == nil {
		return model.Transform{}, false
	}
	return n.local, true
}

// Mesh returns the mesh handle attached to node.
func (g *Graph) Mesh(id model.NodeID) (model.AssetHandle, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.nodeLocked(id)
	if n == nil || !n.mesh.Valid() {
		return 0, false
	}
	return n.mesh, true
}

// Name returns node's label.
func (g *Graph) Name(id model.NodeID) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.nodeLocked(id)
	if n == nil {
		return ""
	}
	return n.name
}

// Find returns the first node (by id) labeled name.
func (g *Graph) Find(name string) (model.NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for i, n := range g.nodes {
		if n.named && n.name == name {
			return model.NodeID(i), true
		}
	}
	return model.NoNode, false
}

// Reparent moves node under parent (model.NoNode detaches it to the root)
// and reports a ParentChangeEvent.
func (g *Graph) Reparent(id, parent model.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.nodeLocked(id)
	if n == nil {
		return fmt.Errorf("reparenting %d: %w", id, ErrNodeNotFound)
	}
	if parent != model.NoNode {
		if g.nodeLocked(parent) == nil {
			return fmt.Errorf("reparenting %d under %d: %w", id, parent, ErrNodeNotFound)
		}
		for a := parent; a != model.NoNode; a = g.nodes[a].parent {
			if a == id {
				return fmt.Errorf("reparenting %d under %d: %w", id, parent, ErrCycle)
			}
		}
	}

	if n.parent != model.NoNode {
		old := g.nodes[n.parent]
		for i, c := range old.children {
			if c == id {
				old.children = append(old.children[:i], old.children[i+1:]...)
				break
			}
		}
	}
	n.parent = parent

	ev := spawn.ParentChangeEvent{Name: n.name}
	if parent != model.NoNode {
		p := g.nodes[parent]
		p.children = append(p.children, id)
		ev.NewParent = p.name
		ev.HasParent = true
	}
	g.parentChanges.Push(ev)

	slog.Debug("node reparented", "node", id, "name", n.name, "newParent", ev.NewParent, "detached", ev.IsDetached())
	return nil
}

// Duplicate deep-copies node's subtree under the same parent and reports a
// DuplicationEvent. Copies share mesh assets; baked artifacts are not copied.
func (g *Graph) Duplicate(id model.NodeID) (model.NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	src := g.nodeLocked(id)
	if src == nil {
		return model.NoNode, fmt.Errorf("duplicating %d: %w", id, ErrNodeNotFound)
	}

	type pair struct{ from, parent model.NodeID }
	var root model.NodeID
	stack := []pair{{from: id, parent: src.parent}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		orig := g.nodes[p.from]
		name := ""
		if orig.named {
			name = orig.name
		}
		copyID, err := g.addNodeLocked(name, p.parent, orig.local)
		if err != nil {
			return model.NoNode, fmt.Errorf("duplicating %d: %w", id, err)
		}
		g.nodes[copyID].mesh = orig.mesh
		if p.from == id {
			root = copyID
		}
		// Reverse so children are copied in their original order.
		for i := len(orig.children) - 1; i >= 0; i-- {
			stack = append(stack, pair{from: orig.children[i], parent: copyID})
		}
	}

	g.duplications.Push(spawn.DuplicationEvent{Name: src.name})
	slog.Debug("node duplicated", "node", id, "copy", root, "name", src.name)
	return root, nil
}

// DrainAdded returns nodes labeled since the previous drain.
func (g *Graph) DrainAdded() []model.NodeLabel {
	return g.added.Drain()
}

// DrainParentChanges returns parent changes since the previous drain.
func (g *Graph) DrainParentChanges() []spawn.ParentChangeEvent {
	return g.parentChanges.Drain()
}

// DrainDuplications returns duplications since the previous drain.
func (g *Graph) DrainDuplications() []spawn.DuplicationEvent {
	return g.duplications.Drain()
}

func (g *Graph) nodeLocked(id model.NodeID) *node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}
