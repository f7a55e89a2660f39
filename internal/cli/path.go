package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/udisondev/worldkit/internal/model"
	"github.com/udisondev/worldkit/internal/navmesh"
	"github.com/udisondev/worldkit/internal/world"
)

type pathOptions struct {
	object string
	delta  float64
	from   string
	to     string
}

// PathReport is the result of the path command.
type PathReport struct {
	From      [3]float64   `json:"from"`
	To        [3]float64   `json:"to"`
	Waypoints [][3]float64 `json:"waypoints"`
	Length    float64      `json:"length"`
}

func (r PathReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d waypoint(s), length %.3f\n", len(r.Waypoints), r.Length)
	for _, w := range r.Waypoints {
		fmt.Fprintf(&b, "  (%.3f, %.3f, %.3f)\n", w[0], w[1], w[2])
	}
	return b.String()
}

// NewPathCommand creates the path command.
func NewPathCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &pathOptions{}

	cmd := &cobra.Command{
		Use:           "path <catalog.yaml>",
		Short:         "Bake a prefab and find a path across its navmeshes",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			report, err := runPath(cmd, args[0], opts)
			if err != nil {
				return f.Failure(err)
			}
			return f.Success(report)
		},
	}

	cmd.Flags().StringVar(&opts.object, "object", string(model.GameObjectLevel), "game object to instantiate")
	cmd.Flags().Float64Var(&opts.delta, "delta", navmesh.DefaultDelta, "point location search distance")
	cmd.Flags().StringVar(&opts.from, "from", "", "start point x,y,z")
	cmd.Flags().StringVar(&opts.to, "to", "", "end point x,y,z")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runPath(cmd *cobra.Command, catalogPath string, opts *pathOptions) (PathReport, error) {
	from, err := parseVec3(opts.from)
	if err != nil {
		return PathReport{}, fmt.Errorf("--from: %w", err)
	}
	to, err := parseVec3(opts.to)
	if err != nil {
		return PathReport{}, fmt.Errorf("--to: %w", err)
	}

	_, results, err := bakeCatalog(cmd, catalogPath, model.GameObject(opts.object), opts.delta)
	if err != nil {
		return PathReport{}, err
	}

	nav := world.NewNavigator()
	for _, res := range results {
		nav.Add(res)
	}

	waypoints, err := nav.FindPath(from, to)
	if err != nil {
		return PathReport{}, err
	}

	report := PathReport{
		From:      from,
		To:        to,
		Waypoints: make([][3]float64, 0, len(waypoints)),
	}
	for i, w := range waypoints {
		report.Waypoints = append(report.Waypoints, w)
		if i > 0 {
			report.Length += w.Sub(waypoints[i-1]).Len()
		}
	}
	return report, nil
}

func parseVec3(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("parsing %q: %w", p, err)
		}
		v[i] = f
	}
	return v, nil
}
