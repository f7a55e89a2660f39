package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udisondev/worldkit/internal/db"
)

type storedOptions struct {
	dsn    string
	label  string
	outDir string
}

// StoredReport is the result of the stored command.
type StoredReport struct {
	Total        int      `json:"total"`
	Label        string   `json:"label,omitempty"`
	Fingerprints []string `json:"fingerprints,omitempty"`
	Polygons     int      `json:"polygons,omitempty"`
	File         string   `json:"file,omitempty"`
}

func (r StoredReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d stored navmesh(es)\n", r.Total)
	if r.Label != "" {
		fmt.Fprintf(&b, "%s: %d bake(s)\n", r.Label, len(r.Fingerprints))
		for _, fp := range r.Fingerprints {
			fmt.Fprintf(&b, "  %s\n", fp)
		}
	}
	if r.File != "" {
		fmt.Fprintf(&b, "newest (%d polygons) -> %s\n", r.Polygons, r.File)
	}
	return b.String()
}

// NewStoredCommand creates the stored command.
func NewStoredCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &storedOptions{}

	cmd := &cobra.Command{
		Use:   "stored",
		Short: "Inspect navmeshes persisted by the world server",
		Long: `Count the navmeshes stored in the database. With --label, list the
fingerprints baked under that marker, newest first. With --out as well,
the newest one is exported as <fingerprint>.navm.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			report, err := runStored(cmd, opts)
			if err != nil {
				return f.Failure(err)
			}
			return f.Success(report)
		},
	}

	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "PostgreSQL connection string (required)")
	cmd.Flags().StringVar(&opts.label, "label", "", "marker label to list")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "directory for the exported .navm file")
	_ = cmd.MarkFlagRequired("dsn")

	return cmd
}

func runStored(cmd *cobra.Command, opts *storedOptions) (StoredReport, error) {
	if opts.outDir != "" && opts.label == "" {
		return StoredReport{}, errors.New("--out requires --label")
	}

	ctx := cmd.Context()
	database, err := db.New(ctx, opts.dsn)
	if err != nil {
		return StoredReport{}, err
	}
	defer database.Close()

	repo := db.NewNavMeshRepository(database.Pool())
	total, err := repo.Count(ctx)
	if err != nil {
		return StoredReport{}, err
	}
	report := StoredReport{Total: total, Label: opts.label}
	if opts.label == "" {
		return report, nil
	}

	fps, err := repo.ListByLabel(ctx, opts.label)
	if err != nil {
		return StoredReport{}, err
	}
	for _, fp := range fps {
		report.Fingerprints = append(report.Fingerprints, hex.EncodeToString(fp[:]))
	}
	if opts.outDir == "" {
		return report, nil
	}
	if len(fps) == 0 {
		return StoredReport{}, fmt.Errorf("no navmesh stored under %q: %w", opts.label, db.ErrNotFound)
	}

	rec, err := repo.Load(ctx, fps[0])
	if err != nil {
		return StoredReport{}, err
	}
	file, err := writeNavMesh(opts.outDir, report.Fingerprints[0], rec.NavMesh)
	if err != nil {
		return StoredReport{}, err
	}
	report.Polygons = rec.PolygonCount
	report.File = file
	return report, nil
}
