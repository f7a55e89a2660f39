package testutil

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/worldkit/internal/model"
)

// LevelCatalogYAML is a prefab catalog with a level whose ground is a
// navmesh marker over a 4x4 floor.
const LevelCatalogYAML = `
prefabs:
  level:
    name: "Level"
    children:
      - name: "Ground [navmesh]"
        transform:
          translation: [0, 0, 0]
        children:
          - name: "Floor"
            mesh:
              positions: [[0, 0, 0], [4, 0, 0], [4, 0, 4], [0, 0, 4]]
              indices: [0, 1, 2, 0, 2, 3]
          - name: "Ledge"
            mesh:
              positions: [[4, 1, 0], [6, 1, 0], [6, 1, 2], [4, 1, 2]]
              indices: [0, 1, 2, 0, 2, 3]
`

// Quad returns a flat square [x0,x0+size]x[z0,z0+size] at height y.
func Quad(x0, z0, size, y float64) *model.Mesh {
	return &model.Mesh{
		Positions: []mgl64.Vec3{
			{x0, y, z0}, {x0 + size, y, z0}, {x0 + size, y, z0 + size}, {x0, y, z0 + size},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
