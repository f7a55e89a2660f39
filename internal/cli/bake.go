package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udisondev/worldkit/internal/model"
	"github.com/udisondev/worldkit/internal/navmesh"
	"github.com/udisondev/worldkit/internal/scene"
	"github.com/udisondev/worldkit/internal/spawn"
)

type bakeOptions struct {
	object string
	delta  float64
	outDir string
}

// MeshReport describes one baked navigation mesh.
type MeshReport struct {
	Marker      string `json:"marker"`
	Node        string `json:"node"`
	Vertices    int    `json:"vertices"`
	Polygons    int    `json:"polygons"`
	Fingerprint string `json:"fingerprint"`
	File        string `json:"file,omitempty"`
}

// BakeReport is the result of the bake command.
type BakeReport struct {
	Object string       `json:"object"`
	Delta  float64      `json:"delta"`
	Meshes []MeshReport `json:"meshes"`
}

func (r BakeReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d navmesh(es), delta %g\n", r.Object, len(r.Meshes), r.Delta)
	for _, m := range r.Meshes {
		fmt.Fprintf(&b, "  %s / %s: %d vertices, %d polygons, %s\n",
			m.Marker, m.Node, m.Vertices, m.Polygons, m.Fingerprint[:16])
		if m.File != "" {
			fmt.Fprintf(&b, "    -> %s\n", m.File)
		}
	}
	return b.String()
}

// NewBakeCommand creates the bake command.
func NewBakeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &bakeOptions{}

	cmd := &cobra.Command{
		Use:   "bake <catalog.yaml>",
		Short: "Bake navmeshes of a prefab",
		Long: `Instantiate one prefab from the catalog at the origin and bake every
[navmesh] marker below it. With --out, each navmesh is written as
<fingerprint>.navm in the given directory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			report, err := runBake(cmd, args[0], opts)
			if err != nil {
				return f.Failure(err)
			}
			return f.Success(report)
		},
	}

	cmd.Flags().StringVar(&opts.object, "object", string(model.GameObjectLevel), "game object to instantiate")
	cmd.Flags().Float64Var(&opts.delta, "delta", navmesh.DefaultDelta, "point location search distance")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "directory for baked .navm files")

	return cmd
}

func runBake(cmd *cobra.Command, catalogPath string, opts *bakeOptions) (BakeReport, error) {
	g, results, err := bakeCatalog(cmd, catalogPath, model.GameObject(opts.object), opts.delta)
	if err != nil {
		return BakeReport{}, err
	}

	report := BakeReport{
		Object: opts.object,
		Delta:  opts.delta,
		Meshes: make([]MeshReport, 0, len(results)),
	}
	for _, res := range results {
		fp := res.NavMesh.Fingerprint()
		m := MeshReport{
			Marker:      res.MarkerLabel,
			Node:        g.Name(res.Node),
			Vertices:    len(res.NavMesh.Vertices),
			Polygons:    res.NavMesh.PolygonCount(),
			Fingerprint: hex.EncodeToString(fp[:]),
		}
		if opts.outDir != "" {
			file, err := writeNavMesh(opts.outDir, m.Fingerprint, res.NavMesh)
			if err != nil {
				return BakeReport{}, err
			}
			m.File = file
		}
		report.Meshes = append(report.Meshes, m)
	}
	return report, nil
}

// bakeCatalog instantiates object from the catalog into a new graph and
// bakes its markers.
func bakeCatalog(cmd *cobra.Command, catalogPath string, object model.GameObject, delta float64) (*scene.Graph, []navmesh.BakeResult, error) {
	if _, err := os.Stat(catalogPath); err != nil {
		return nil, nil, fmt.Errorf("catalog %s: %w", catalogPath, err)
	}
	cat, err := scene.LoadCatalog(catalogPath)
	if err != nil {
		return nil, nil, err
	}

	g := scene.NewGraph()
	spawner := scene.NewSpawner(g, cat)
	if err := spawner.Instantiate(cmd.Context(), spawn.NewSpawnEvent(object, model.IdentityTransform())); err != nil {
		return nil, nil, err
	}

	deriver := navmesh.NewDeriver(g, g.Meshes(), g, delta)
	results, err := deriver.Derive(g.DrainAdded())
	if err != nil {
		return nil, nil, err
	}
	if len(results) == 0 {
		return nil, nil, errors.New("no navmesh baked: prefab has no [navmesh] marker with meshes")
	}
	return g, results, nil
}

func writeNavMesh(dir, fingerprint string, nm *navmesh.NavMesh) (string, error) {
	data, err := nm.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("encoding navmesh: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, fingerprint+".navm")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
