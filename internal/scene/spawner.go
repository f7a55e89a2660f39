package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/worldkit/internal/spawn"
)

// ErrUnknownObject is returned when no prefab exists for a spawned object.
var ErrUnknownObject = errors.New("unknown game object")

// Spawner instantiates spawn events into a graph using a prefab catalog.
type Spawner struct {
	graph   *Graph
	catalog *Catalog
}

// NewSpawner creates spawner
func NewSpawner(graph *Graph, catalog *Catalog) *Spawner {
	return &Spawner{
		graph:   graph,
		catalog: catalog,
	}
}

// Instantiate implements spawn.Instantiator.
func (s *Spawner) Instantiate(_ context.Context, ev spawn.SpawnEvent) error {
	prefab, ok := s.catalog.Get(ev.Object)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownObject, ev.Object)
	}
	if prefab.Name == "" {
		prefab.Name = ev.Object.String()
	}

	root, err := s.graph.Instantiate(prefab, ev.Transform)
	if err != nil {
		return fmt.Errorf("instantiating %s: %w", ev.Object, err)
	}

	slog.Info("object instantiated",
		"object", ev.Object,
		"node", root,
		"translation", ev.Transform.Translation)
	return nil
}
