package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/worldkit/internal/model"
)

// Prefab is an authored node tree instantiated for a game object.
type Prefab struct {
	Name      string              `yaml:"name"`
	Transform model.TransformSpec `yaml:"transform"`
	Mesh      *model.Mesh         `yaml:"mesh,omitempty"`
	Children  []Prefab            `yaml:"children,omitempty"`
}

// Catalog maps game objects to prefabs.
type Catalog struct {
	Prefabs map[model.GameObject]Prefab `yaml:"prefabs"`
}

// DefaultCatalog returns prefabs for the well-known objects that need no geometry.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Prefabs: map[model.GameObject]Prefab{
			model.GameObjectEmpty:    {Name: "Empty"},
			model.GameObjectPlayer:   {Name: "Player"},
			model.GameObjectNpc:      {Name: "Npc"},
			model.GameObjectSunlight: {Name: "Sunlight"},
			model.GameObjectDoorway:  {Name: "Doorway"},
			model.GameObjectOrb:      {Name: "Orb"},
		},
	}
}

// ParseCatalog decodes YAML prefabs on top of DefaultCatalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var parsed Catalog
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	cat := DefaultCatalog()
	for obj, p := range parsed.Prefabs {
		cat.Prefabs[obj] = p
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// LoadCatalog reads prefabs from a YAML file.
// If the file doesn't exist, returns DefaultCatalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return cat, nil
}

// Get returns prefab for object.
func (c *Catalog) Get(obj model.GameObject) (Prefab, bool) {
	p, ok := c.Prefabs[obj]
	return p, ok
}

// Validate checks every mesh in every prefab.
func (c *Catalog) Validate() error {
	for obj, p := range c.Prefabs {
		stack := []*Prefab{&p}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if cur.Mesh != nil {
				if err := cur.Mesh.Validate(); err != nil {
					return fmt.Errorf("prefab %s node %q: %w", obj, cur.Name, err)
				}
			}
			for i := range cur.Children {
				stack = append(stack, &cur.Children[i])
			}
		}
	}
	return nil
}

// Instantiate adds prefab's node tree to the graph as a new root placed at
// placement. The prefab root's own transform is applied inside placement.
func (g *Graph) Instantiate(p Prefab, placement model.Transform) (model.NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	type item struct {
		prefab *Prefab
		parent model.NodeID
	}

	var root model.NodeID
	stack := []item{{prefab: &p, parent: model.NoNode}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		local := it.prefab.Transform.Transform()
		if it.parent == model.NoNode {
			local = placement.Mul(local)
		}

		id, err := g.addNodeLocked(it.prefab.Name, it.parent, local)
		if err != nil {
			return model.NoNode, fmt.Errorf("instantiating %q: %w", p.Name, err)
		}
		if it.parent == model.NoNode {
			root = id
		}
		if it.prefab.Mesh != nil {
			mesh := *it.prefab.Mesh
			mesh.Positions = append(mesh.Positions[:0:0], mesh.Positions...)
			mesh.Normals = append(mesh.Normals[:0:0], mesh.Normals...)
			mesh.Indices = append(mesh.Indices[:0:0], mesh.Indices...)
			g.nodes[id].mesh = g.meshes.Add(&mesh)
		}

		for i := len(it.prefab.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{prefab: &it.prefab.Children[i], parent: id})
		}
	}
	return root, nil
}
