package navmesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/worldkit/internal/model"
)

type fakeNode struct {
	parent   model.NodeID
	children []model.NodeID
	local    *model.Transform
	mesh     model.AssetHandle
}

// fakeScene is a minimal in-memory hierarchy for tests
type fakeScene struct {
	nodes    map[model.NodeID]*fakeNode
	meshes   map[model.AssetHandle]*model.Mesh
	navs     []*NavMesh
	attached map[model.NodeID]model.AssetHandle
	next     model.NodeID
}

func newFakeScene() *fakeScene {
	return &fakeScene{
		nodes:    make(map[model.NodeID]*fakeNode),
		meshes:   make(map[model.AssetHandle]*model.Mesh),
		attached: make(map[model.NodeID]model.AssetHandle),
	}
}

func (s *fakeScene) add(parent model.NodeID, local model.Transform) model.NodeID {
	id := s.next
	s.next++
	s.nodes[id] = &fakeNode{parent: parent, local: &local}
	if parent != model.NoNode {
		s.nodes[parent].children = append(s.nodes[parent].children, id)
	}
	return id
}

func (s *fakeScene) addMesh(node model.NodeID, m *model.Mesh) model.AssetHandle {
	h := model.AssetHandle(len(s.meshes) + 1)
	s.meshes[h] = m
	s.nodes[node].mesh = h
	return h
}

func (s *fakeScene) Parent(id model.NodeID) (model.NodeID, bool) {
	n, ok := s.nodes[id]
	if !ok || n.parent == model.NoNode {
		return model.NoNode, false
	}
	return n.parent, true
}

func (s *fakeScene) LocalTransform(id model.NodeID) (model.Transform, bool) {
	n, ok := s.nodes[id]
	if !ok || n.local == nil {
		return model.Transform{}, false
	}
	return *n.local, true
}

func (s *fakeScene) Children(id model.NodeID) []model.NodeID {
	if n, ok := s.nodes[id]; ok {
		return n.children
	}
	return nil
}

func (s *fakeScene) Mesh(id model.NodeID) (model.AssetHandle, bool) {
	n, ok := s.nodes[id]
	if !ok || n.mesh == 0 {
		return 0, false
	}
	return n.mesh, true
}

func (s *fakeScene) Get(h model.AssetHandle) (*model.Mesh, bool) {
	m, ok := s.meshes[h]
	return m, ok
}

func (s *fakeScene) AddNavMesh(nm *NavMesh) model.AssetHandle {
	s.navs = append(s.navs, nm)
	return model.AssetHandle(len(s.navs))
}

func (s *fakeScene) AttachNavMesh(id model.NodeID, h model.AssetHandle) error {
	s.attached[id] = h
	return nil
}

// quad returns a flat square [x0,x0+size]×[z0,z0+size] at height y as two triangles.
func quad(x0, z0, size, y float64) *model.Mesh {
	return &model.Mesh{
		Positions: []mgl64.Vec3{
			{x0, y, z0}, {x0 + size, y, z0}, {x0 + size, y, z0 + size}, {x0, y, z0 + size},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// strip returns count unit quads along X sharing edges, at height 0.
func strip(count int) *model.Mesh {
	m := &model.Mesh{}
	for i := range count {
		base := uint32(len(m.Positions))
		x := float64(i)
		m.Positions = append(m.Positions,
			mgl64.Vec3{x, 0, 0}, mgl64.Vec3{x + 1, 0, 0}, mgl64.Vec3{x + 1, 0, 1}, mgl64.Vec3{x, 0, 1})
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}
