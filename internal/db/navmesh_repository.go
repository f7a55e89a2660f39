package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/worldkit/internal/model"
	"github.com/udisondev/worldkit/internal/navmesh"
)

// NavMeshRecord is a stored baked navigation mesh.
type NavMeshRecord struct {
	Fingerprint  [32]byte
	MarkerLabel  string
	Node         model.NodeID
	Delta        float64
	PolygonCount int
	BakedAt      time.Time
	NavMesh      *navmesh.NavMesh
}

// NavMeshRepository stores baked navigation meshes keyed by fingerprint.
// Baking the same geometry twice results in one row.
type NavMeshRepository struct {
	pool *pgxpool.Pool
}

// NewNavMeshRepository creates a new navmesh repository
func NewNavMeshRepository(pool *pgxpool.Pool) *NavMeshRepository {
	return &NavMeshRepository{pool: pool}
}

// Save upserts nm and returns its fingerprint.
func (r *NavMeshRepository) Save(ctx context.Context, label string, node model.NodeID, nm *navmesh.NavMesh) ([32]byte, error) {
	data, err := nm.MarshalBinary()
	if err != nil {
		return [32]byte{}, fmt.Errorf("encoding navmesh %q: %w", label, err)
	}
	fp := nm.Fingerprint()

	_, err = r.pool.Exec(ctx, `
		INSERT INTO navmeshes (fingerprint, marker_label, node_id, delta, polygon_count, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (fingerprint) DO UPDATE SET
			marker_label = EXCLUDED.marker_label,
			node_id = EXCLUDED.node_id,
			baked_at = now()`,
		fp[:], label, int32(node), nm.Delta, nm.PolygonCount(), data,
	)
	if err != nil {
		return [32]byte{}, fmt.Errorf("saving navmesh %q: %w", label, err)
	}
	return fp, nil
}

// SaveBake stores the result of a bake.
func (r *NavMeshRepository) SaveBake(ctx context.Context, res navmesh.BakeResult) error {
	_, err := r.Save(ctx, res.MarkerLabel, res.Node, res.NavMesh)
	return err
}

// Load returns the record with fingerprint fp, or ErrNotFound.
func (r *NavMeshRepository) Load(ctx context.Context, fp [32]byte) (*NavMeshRecord, error) {
	var (
		rec    NavMeshRecord
		nodeID int32
		data   []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT marker_label, node_id, delta, polygon_count, baked_at, data
		FROM navmeshes WHERE fingerprint = $1`, fp[:],
	).Scan(&rec.MarkerLabel, &nodeID, &rec.Delta, &rec.PolygonCount, &rec.BakedAt, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("loading navmesh %x: %w", fp[:8], ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading navmesh %x: %w", fp[:8], err)
	}

	nm := &navmesh.NavMesh{}
	if err := nm.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decoding navmesh %x: %w", fp[:8], err)
	}
	rec.Fingerprint = fp
	rec.Node = model.NodeID(nodeID)
	rec.NavMesh = nm
	return &rec, nil
}

// ListByLabel returns fingerprints of meshes baked under marker label, newest first.
func (r *NavMeshRepository) ListByLabel(ctx context.Context, label string) ([][32]byte, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT fingerprint FROM navmeshes
		WHERE marker_label = $1
		ORDER BY baked_at DESC, fingerprint`, label)
	if err != nil {
		return nil, fmt.Errorf("listing navmeshes of %q: %w", label, err)
	}
	defer rows.Close()

	var out [][32]byte
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning navmesh row: %w", err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("navmesh fingerprint has %d bytes", len(raw))
		}
		out = append(out, [32]byte(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating navmesh rows: %w", err)
	}
	return out, nil
}

// Count returns number of stored navmeshes.
func (r *NavMeshRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM navmeshes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting navmeshes: %w", err)
	}
	return n, nil
}
