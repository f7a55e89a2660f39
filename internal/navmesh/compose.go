package navmesh

import (
	"errors"
	"fmt"

	"github.com/udisondev/worldkit/internal/model"
)

// ErrMissingTransform means a node on an ancestor path has no local transform.
// Every node in a well-formed hierarchy has one.
var ErrMissingTransform = errors.New("missing local transform")

// TransformSource is the part of the hierarchy needed to compose transforms.
type TransformSource interface {
	Parent(id model.NodeID) (model.NodeID, bool)
	LocalTransform(id model.NodeID) (model.Transform, bool)
}

// WorldTransform composes node's local transform with all of its ancestors,
// root first (world = parentWorld ∘ local). After every composition step the
// vertical scale is reset to 1 so ancestor scaling never stretches walkable
// geometry vertically.
//
// The hierarchy must be acyclic; cycles are not detected.
func WorldTransform(h TransformSource, id model.NodeID) (model.Transform, error) {
	chain := []model.NodeID{id}
	for cur := id; ; {
		parent, ok := h.Parent(cur)
		if !ok {
			break
		}
		chain = append(chain, parent)
		cur = parent
	}

	var world model.Transform
	for i := len(chain) - 1; i >= 0; i-- {
		local, ok := h.LocalTransform(chain[i])
		if !ok {
			return model.Transform{}, fmt.Errorf("composing world transform of %d: node %d: %w", id, chain[i], ErrMissingTransform)
		}
		if i == len(chain)-1 {
			world = local
		} else {
			world = world.Mul(local)
		}
		world.Scale[1] = 1
	}
	return world, nil
}
