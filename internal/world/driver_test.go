package world

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/worldkit/internal/model"
	"github.com/udisondev/worldkit/internal/navmesh"
	"github.com/udisondev/worldkit/internal/scene"
	"github.com/udisondev/worldkit/internal/spawn"
	"github.com/udisondev/worldkit/internal/testutil"
)

const testCatalog = `
prefabs:
  level:
    name: "Level"
    children:
      - name: "Ground [navmesh]"
        transform:
          translation: [10, 0, 0]
          scale: [2, 5, 2]
        children:
          - name: "Floor"
            mesh:
              positions: [[0, 0, 0], [1, 0, 0], [1, 0, 1], [0, 0, 1]]
              indices: [0, 1, 2, 0, 2, 3]
`

type testWorld struct {
	graph  *scene.Graph
	spawns *spawn.Manager
	driver *Driver
}

func newTestWorld(t *testing.T, delta float64) *testWorld {
	t.Helper()
	return newTestWorldWithPending(t, delta, nil)
}

func newTestWorldWithPending(t *testing.T, delta float64, pending spawn.PendingStore) *testWorld {
	t.Helper()

	cat, err := scene.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)

	g := scene.NewGraph()
	mgr := spawn.NewManager(spawn.NewScheduler(), scene.NewSpawner(g, cat), pending)
	deriver := navmesh.NewDeriver(g, g.Meshes(), g, delta)

	return &testWorld{
		graph:  g,
		spawns: mgr,
		driver: NewDriver(g, mgr, deriver, 5*time.Millisecond),
	}
}

type recordingStore struct {
	mu    sync.Mutex
	saved []navmesh.BakeResult
	err   error
}

func (s *recordingStore) SaveBake(_ context.Context, res navmesh.BakeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, res)
	return nil
}

type pendingStore struct {
	mu      sync.Mutex
	pending []spawn.PendingSpawn
	saves   int
}

func (s *pendingStore) LoadPending(context.Context) ([]spawn.PendingSpawn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]spawn.PendingSpawn(nil), s.pending...), nil
}

func (s *pendingStore) ReplacePending(_ context.Context, pending []spawn.PendingSpawn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append([]spawn.PendingSpawn(nil), pending...)
	s.saves++
	return nil
}

func levelAt(delay uint) spawn.DelayedSpawnEvent {
	return spawn.NewDelayedSpawnEvent(delay, spawn.NewSpawnEvent(model.GameObjectLevel, model.IdentityTransform()))
}

func TestDriver_DelayedLevelIsBaked(t *testing.T) {
	w := newTestWorld(t, navmesh.DefaultDelta)
	store := &recordingStore{}
	w.driver.SetNavMeshStore(store)

	var baked []navmesh.BakeResult
	w.driver.OnBake(func(res navmesh.BakeResult) { baked = append(baked, res) })

	w.spawns.SpawnDelayed(levelAt(2))
	ctx := context.Background()

	report, err := w.driver.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepReport{Tick: 1}, report)
	assert.Equal(t, 0, w.graph.Len())

	report, err = w.driver.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Spawned)
	assert.Equal(t, 1, report.Baked)

	floor, ok := w.graph.Find("Floor")
	require.True(t, ok)
	h, ok := w.graph.NavMesh(floor)
	require.True(t, ok)
	nm, ok := w.graph.NavMeshes().Get(h)
	require.True(t, ok)

	// Marker world transform only: translate (10,0,0), scale (2,1,2).
	testutil.AssertVec3InDelta(t, mgl64.Vec3{12, 0, 2}, nm.Vertices[2], 1e-9)
	assert.Equal(t, navmesh.DefaultDelta, nm.Delta)

	require.Len(t, baked, 1)
	assert.Equal(t, floor, baked[0].Node)
	assert.Len(t, store.saved, 1)

	report, err = w.driver.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Baked, "markers bake once")
	assert.Equal(t, uint64(3), w.driver.Ticks())
}

func TestDriver_FailuresDoNotStopTick(t *testing.T) {
	w := newTestWorld(t, navmesh.DefaultDelta)
	store := &recordingStore{err: errors.New("db down")}
	w.driver.SetNavMeshStore(store)

	w.spawns.SpawnDelayed(spawn.NewDelayedSpawnEvent(0, spawn.NewSpawnEvent("dragon", model.IdentityTransform())))
	w.spawns.SpawnDelayed(levelAt(0))

	report, err := w.driver.Step(context.Background())
	assert.ErrorIs(t, err, scene.ErrUnknownObject)
	assert.ErrorContains(t, err, "db down")
	assert.Equal(t, 1, report.Spawned)
	assert.Equal(t, 1, report.Baked)

	floor, _ := w.graph.Find("Floor")
	_, ok := w.graph.NavMesh(floor)
	assert.True(t, ok)
}

func TestDriver_PublishesSceneNotices(t *testing.T) {
	w := newTestWorld(t, navmesh.DefaultDelta)

	var (
		parents []spawn.ParentChangeEvent
		dups    []spawn.DuplicationEvent
	)
	w.driver.OnParentChange(func(ev spawn.ParentChangeEvent) { parents = append(parents, ev) })
	w.driver.OnDuplication(func(ev spawn.DuplicationEvent) { dups = append(dups, ev) })

	room, _ := w.graph.AddNode("room", model.NoNode, model.IdentityTransform())
	orb, _ := w.graph.AddNode("orb", model.NoNode, model.IdentityTransform())
	require.NoError(t, w.graph.Reparent(orb, room))
	_, err := w.graph.Duplicate(orb)
	require.NoError(t, err)

	report, err := w.driver.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ParentChanges)
	assert.Equal(t, 1, report.Duplications)
	assert.Equal(t, []spawn.ParentChangeEvent{{Name: "orb", NewParent: "room", HasParent: true}}, parents)
	assert.Equal(t, []spawn.DuplicationEvent{{Name: "orb"}}, dups)

	report, err = w.driver.Step(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.ParentChanges)
	assert.Len(t, parents, 1)
}

func TestDriver_StartStop(t *testing.T) {
	w := newTestWorld(t, navmesh.DefaultDelta)
	w.spawns.SpawnDelayed(levelAt(1))

	done := make(chan error, 1)
	go func() { done <- w.driver.Start(context.Background()) }()

	require.Eventually(t, func() bool { return w.driver.Ticks() >= 2 }, time.Second, 5*time.Millisecond)
	w.driver.Stop()
	w.driver.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("driver did not stop")
	}

	_, ok := w.graph.Find("Floor")
	assert.True(t, ok)
}

func TestDriver_StartCanceled(t *testing.T) {
	w := newTestWorld(t, navmesh.DefaultDelta)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.driver.Start(ctx), context.Canceled)
}

func TestDriver_StartRejectsZeroInterval(t *testing.T) {
	w := newTestWorld(t, navmesh.DefaultDelta)
	w.driver.interval = 0
	assert.Error(t, w.driver.Start(context.Background()))
}

func TestDriver_ShutdownSavesAfterLastStep(t *testing.T) {
	store := &pendingStore{}
	w := newTestWorldWithPending(t, navmesh.DefaultDelta, store)
	w.spawns.SpawnDelayed(levelAt(1))
	npc := w.spawns.SpawnDelayed(spawn.NewDelayedSpawnEvent(5,
		spawn.NewSpawnEvent(model.GameObjectNpc, model.IdentityTransform())))

	_, err := w.driver.Step(context.Background())
	require.NoError(t, err)
	require.NoError(t, w.driver.Shutdown(context.Background()))

	require.Len(t, store.pending, 1, "the released level is not saved")
	assert.Equal(t, npc, store.pending[0].ID)
	assert.Equal(t, uint(4), store.pending[0].Delayed.TickDelay)

	_, err = w.driver.Step(context.Background())
	assert.ErrorIs(t, err, ErrShutdown)
	assert.Equal(t, uint64(1), w.driver.Ticks())

	require.NoError(t, w.driver.Shutdown(context.Background()))
	assert.Equal(t, 1, store.saves)
}

func TestDriver_ShutdownWhileRunning(t *testing.T) {
	const entries = 50

	store := &pendingStore{}
	w := newTestWorldWithPending(t, navmesh.DefaultDelta, store)
	delays := make(map[uuid.UUID]uint, entries)
	for k := uint(1); k <= entries; k++ {
		id := w.spawns.SpawnDelayed(spawn.NewDelayedSpawnEvent(k,
			spawn.NewSpawnEvent(model.GameObjectNpc, model.IdentityTransform())))
		delays[id] = k
	}

	done := make(chan error, 1)
	go func() { done <- w.driver.Start(context.Background()) }()

	require.Eventually(t, func() bool { return w.driver.Ticks() >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, w.driver.Shutdown(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("driver did not stop")
	}

	ticks := uint(w.driver.Ticks())
	require.Len(t, store.pending, entries-int(ticks))
	for _, p := range store.pending {
		assert.Greater(t, delays[p.ID], ticks, "entry released at tick %d was saved", delays[p.ID])
		assert.Equal(t, delays[p.ID]-ticks, p.Delayed.TickDelay)
	}
}
