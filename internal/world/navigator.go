package world

import (
	"errors"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/worldkit/internal/model"
	"github.com/udisondev/worldkit/internal/navmesh"
)

var (
	// ErrOffMesh is returned when a point lies on no baked navigation mesh.
	ErrOffMesh = errors.New("point is not on any navmesh")
	// ErrNoPath is returned when both points are on meshes but not connected.
	ErrNoPath = errors.New("no path between points")
)

type navEntry struct {
	node model.NodeID
	mesh *navmesh.NavMesh
}

// Navigator answers movement queries against every mesh baked so far.
// Register it with Driver.OnBake. Thread-safe.
type Navigator struct {
	mu      sync.RWMutex
	entries []navEntry
}

// NewNavigator creates empty navigator
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Add registers a baked mesh.
func (n *Navigator) Add(res navmesh.BakeResult) {
	if res.NavMesh == nil || res.NavMesh.IsEmpty() {
		return
	}
	n.mu.Lock()
	n.entries = append(n.entries, navEntry{node: res.Node, mesh: res.NavMesh})
	n.mu.Unlock()
}

// Len returns number of registered meshes.
func (n *Navigator) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.entries)
}

// Locate returns the node whose navmesh contains p (XZ plane) and p projected
// onto that mesh.
func (n *Navigator) Locate(p mgl64.Vec3) (model.NodeID, mgl64.Vec3, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, e := range n.entries {
		if projected, ok := e.mesh.Project(p); ok {
			return e.node, projected, true
		}
	}
	return model.NoNode, mgl64.Vec3{}, false
}

// FindPath returns waypoints from from to to. Both points must lie on the
// same mesh; paths never cross between meshes.
func (n *Navigator) FindPath(from, to mgl64.Vec3) ([]mgl64.Vec3, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	onMesh := false
	for _, e := range n.entries {
		if _, ok := e.mesh.Project(from); !ok {
			continue
		}
		onMesh = true
		if _, ok := e.mesh.Project(to); !ok {
			continue
		}
		if path, ok := e.mesh.FindPath(from, to); ok {
			return path, nil
		}
	}
	if !onMesh {
		return nil, ErrOffMesh
	}
	return nil, ErrNoPath
}
