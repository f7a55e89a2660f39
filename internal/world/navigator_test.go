package world

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/worldkit/internal/model"
	"github.com/udisondev/worldkit/internal/navmesh"
)

func TestNavigator_FollowsBakes(t *testing.T) {
	w := newTestWorld(t, 0.25)
	nav := NewNavigator()
	w.driver.OnBake(nav.Add)

	w.spawns.SpawnDelayed(levelAt(0))
	_, err := w.driver.Step(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, nav.Len())

	floor, _ := w.graph.Find("Floor")
	node, p, ok := nav.Locate(mgl64.Vec3{11, 7, 1})
	require.True(t, ok)
	assert.Equal(t, floor, node)
	assert.InDelta(t, 0, p.Y(), 1e-9, "projected to mesh height")

	path, err := nav.FindPath(mgl64.Vec3{10.2, 0, 0.5}, mgl64.Vec3{11.8, 0, 1.5})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(path), 2)

	_, err = nav.FindPath(mgl64.Vec3{50, 0, 50}, mgl64.Vec3{11, 0, 1})
	assert.ErrorIs(t, err, ErrOffMesh)
}

func TestNavigator_DisconnectedMeshes(t *testing.T) {
	nav := NewNavigator()
	for i, x := range []float64{0, 10} {
		nm, err := navmesh.Bake(&model.Mesh{
			Positions: []mgl64.Vec3{{x, 0, 0}, {x + 1, 0, 0}, {x + 1, 0, 1}, {x, 0, 1}},
			Indices:   []uint32{0, 1, 2, 0, 2, 3},
		}, 0)
		require.NoError(t, err)
		nav.Add(navmesh.BakeResult{Node: model.NodeID(i), NavMesh: nm})
	}
	nav.Add(navmesh.BakeResult{Node: 9, NavMesh: &navmesh.NavMesh{}})
	assert.Equal(t, 2, nav.Len(), "empty meshes are ignored")

	_, err := nav.FindPath(mgl64.Vec3{0.5, 0, 0.5}, mgl64.Vec3{10.5, 0, 0.5})
	assert.ErrorIs(t, err, ErrNoPath)
}
