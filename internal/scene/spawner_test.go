package scene

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/worldkit/internal/model"
	"github.com/udisondev/worldkit/internal/spawn"
)

func TestSpawner_UnknownObject(t *testing.T) {
	g := NewGraph()
	s := NewSpawner(g, DefaultCatalog())

	err := s.Instantiate(context.Background(), spawn.NewSpawnEvent("dragon", model.IdentityTransform()))
	assert.ErrorIs(t, err, ErrUnknownObject)
	assert.Equal(t, 0, g.Len())
}

func TestSpawner_NamesRootAfterObject(t *testing.T) {
	cat := DefaultCatalog()
	cat.Prefabs["crate"] = Prefab{}

	g := NewGraph()
	s := NewSpawner(g, cat)

	require.NoError(t, s.Instantiate(context.Background(), spawn.NewSpawnEvent("crate", model.FromTranslation(1, 2, 3))))
	require.NoError(t, s.Instantiate(context.Background(), spawn.NewSpawnEvent(model.GameObjectPlayer, model.IdentityTransform())))

	labels := g.DrainAdded()
	require.Len(t, labels, 2)
	assert.Equal(t, "crate", labels[0].Label)
	assert.Equal(t, "Player", labels[1].Label)

	local, _ := g.LocalTransform(labels[0].Node)
	assert.Equal(t, model.FromTranslation(1, 2, 3), local)
}

func TestSpawner_DrivesManager(t *testing.T) {
	g := NewGraph()
	mgr := spawn.NewManager(spawn.NewScheduler(), NewSpawner(g, DefaultCatalog()), nil)

	mgr.SpawnDelayed(spawn.NewDelayedSpawnEvent(1, spawn.NewSpawnEvent(model.GameObjectOrb, model.IdentityTransform())))

	n, err := mgr.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok := g.Find("Orb")
	assert.True(t, ok)
}
