package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/worldkit/internal/model"
	"github.com/udisondev/worldkit/internal/spawn"
)

func TestGraph_AddNodeReportsLabelOnce(t *testing.T) {
	g := NewGraph()

	root, err := g.AddNode("Level [navmesh]", model.NoNode, model.IdentityTransform())
	require.NoError(t, err)
	child, err := g.AddNode("", root, model.IdentityTransform())
	require.NoError(t, err)

	added := g.DrainAdded()
	require.Len(t, added, 1)
	assert.Equal(t, model.NodeLabel{Node: root, Label: "Level [navmesh]"}, added[0])
	assert.Nil(t, g.DrainAdded(), "drain empties the queue")

	require.NoError(t, g.SetName(child, "Floor"))
	require.NoError(t, g.SetName(child, "Floor renamed"))
	require.NoError(t, g.SetName(root, "Level"))

	added = g.DrainAdded()
	require.Len(t, added, 1)
	assert.Equal(t, child, added[0].Node)
	assert.Equal(t, "Floor renamed", g.Name(child))
}

func TestGraph_AddNodeUnknownParent(t *testing.T) {
	g := NewGraph()

	_, err := g.AddNode("orphan", 42, model.IdentityTransform())
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Equal(t, 0, g.Len())
}

func TestGraph_Hierarchy(t *testing.T) {
	g := NewGraph()

	root, _ := g.AddNode("root", model.NoNode, model.IdentityTransform())
	a, _ := g.AddNode("a", root, model.FromTranslation(1, 0, 0))
	b, _ := g.AddNode("b", root, model.FromTranslation(2, 0, 0))

	_, ok := g.Parent(root)
	assert.False(t, ok)
	p, ok := g.Parent(a)
	require.True(t, ok)
	assert.Equal(t, root, p)
	assert.Equal(t, []model.NodeID{a, b}, g.Children(root))

	local, ok := g.LocalTransform(b)
	require.True(t, ok)
	assert.Equal(t, model.FromTranslation(2, 0, 0), local)

	found, ok := g.Find("b")
	require.True(t, ok)
	assert.Equal(t, b, found)
	_, ok = g.Find("missing")
	assert.False(t, ok)

	children := g.Children(root)
	children[0] = 99
	assert.Equal(t, a, g.Children(root)[0], "Children returns a copy")
}

func TestGraph_ReparentEmitsEvent(t *testing.T) {
	g := NewGraph()

	left, _ := g.AddNode("left", model.NoNode, model.IdentityTransform())
	right, _ := g.AddNode("right", model.NoNode, model.IdentityTransform())
	orb, _ := g.AddNode("orb", left, model.IdentityTransform())

	require.NoError(t, g.Reparent(orb, right))
	assert.Empty(t, g.Children(left))
	assert.Equal(t, []model.NodeID{orb}, g.Children(right))

	require.NoError(t, g.Reparent(orb, model.NoNode))
	_, ok := g.Parent(orb)
	assert.False(t, ok)

	events := g.DrainParentChanges()
	assert.Equal(t, []spawn.ParentChangeEvent{
		{Name: "orb", NewParent: "right", HasParent: true},
		{Name: "orb", NewParent: ""},
	}, events)
	assert.True(t, events[1].IsDetached())
}

func TestGraph_ReparentUnderUnnamedNode(t *testing.T) {
	g := NewGraph()

	level, _ := g.AddNode("Level", model.NoNode, model.IdentityTransform())
	holder, _ := g.AddNode("", level, model.IdentityTransform())
	door, _ := g.AddNode("Door", model.NoNode, model.IdentityTransform())

	require.NoError(t, g.Reparent(door, holder))
	p, ok := g.Parent(door)
	require.True(t, ok)
	assert.Equal(t, holder, p)

	events := g.DrainParentChanges()
	require.Len(t, events, 1)
	assert.Equal(t, spawn.ParentChangeEvent{Name: "Door", NewParent: "", HasParent: true}, events[0])
	assert.False(t, events[0].IsDetached())
}

func TestGraph_ReparentRejectsCycle(t *testing.T) {
	g := NewGraph()

	root, _ := g.AddNode("root", model.NoNode, model.IdentityTransform())
	mid, _ := g.AddNode("mid", root, model.IdentityTransform())
	leaf, _ := g.AddNode("leaf", mid, model.IdentityTransform())

	assert.ErrorIs(t, g.Reparent(root, leaf), ErrCycle)
	assert.ErrorIs(t, g.Reparent(mid, mid), ErrCycle)
	assert.ErrorIs(t, g.Reparent(mid, 100), ErrNodeNotFound)
	assert.Empty(t, g.DrainParentChanges())

	p, _ := g.Parent(leaf)
	assert.Equal(t, mid, p)
}

func TestGraph_DuplicateCopiesSubtree(t *testing.T) {
	g := NewGraph()

	parent, _ := g.AddNode("world", model.NoNode, model.IdentityTransform())
	door, _ := g.AddNode("door", parent, model.FromTranslation(3, 0, 0))
	frame, _ := g.AddNode("frame", door, model.IdentityTransform())
	panel, _ := g.AddNode("", door, model.FromTranslation(0, 1, 0))
	mesh := g.Meshes().Add(&model.Mesh{})
	require.NoError(t, g.SetMesh(frame, mesh))
	g.DrainAdded()

	cp, err := g.Duplicate(door)
	require.NoError(t, err)
	assert.NotEqual(t, door, cp)
	assert.Equal(t, "door", g.Name(cp))
	assert.Equal(t, []model.NodeID{door, cp}, g.Children(parent))

	kids := g.Children(cp)
	require.Len(t, kids, 2)
	assert.Equal(t, "frame", g.Name(kids[0]))
	h, ok := g.Mesh(kids[0])
	require.True(t, ok)
	assert.Equal(t, mesh, h, "copies share mesh assets")

	local, _ := g.LocalTransform(kids[1])
	want, _ := g.LocalTransform(panel)
	assert.Equal(t, want, local)

	assert.Equal(t, []spawn.DuplicationEvent{{Name: "door"}}, g.DrainDuplications())
	assert.Len(t, g.DrainAdded(), 2, "named copies are reported as added")
}

func TestGraph_NavMeshAttachment(t *testing.T) {
	g := NewGraph()
	id, _ := g.AddNode("floor", model.NoNode, model.IdentityTransform())

	_, ok := g.NavMesh(id)
	assert.False(t, ok)

	h := g.AddNavMesh(nil)
	require.NoError(t, g.AttachNavMesh(id, h))
	got, ok := g.NavMesh(id)
	require.True(t, ok)
	assert.Equal(t, h, got)

	assert.ErrorIs(t, g.AttachNavMesh(7, h), ErrNodeNotFound)
}
