package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/worldkit/internal/model"
	"github.com/udisondev/worldkit/internal/spawn"
)

var pendingSpawnColumns = []string{
	"id", "seq", "object", "tick_delay",
	"tx", "ty", "tz", "rx", "ry", "rz", "rw", "sx", "sy", "sz",
}

// PendingSpawnRepository persists delayed spawns that have not fired yet.
// Implements spawn.PendingStore.
type PendingSpawnRepository struct {
	pool *pgxpool.Pool
}

// NewPendingSpawnRepository creates a new pending spawn repository
func NewPendingSpawnRepository(pool *pgxpool.Pool) *PendingSpawnRepository {
	return &PendingSpawnRepository{pool: pool}
}

// LoadPending returns stored pending spawns in scheduling order.
func (r *PendingSpawnRepository) LoadPending(ctx context.Context) ([]spawn.PendingSpawn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, object, tick_delay, tx, ty, tz, rx, ry, rz, rw, sx, sy, sz
		FROM pending_spawns
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("loading pending spawns: %w", err)
	}
	defer rows.Close()

	pending := make([]spawn.PendingSpawn, 0, 16)
	for rows.Next() {
		var (
			id     uuid.UUID
			object string
			delay  int64
			pos    mgl64.Vec3
			rot    mgl64.Quat
			scale  mgl64.Vec3
		)
		if err := rows.Scan(&id, &object, &delay,
			&pos[0], &pos[1], &pos[2],
			&rot.V[0], &rot.V[1], &rot.V[2], &rot.W,
			&scale[0], &scale[1], &scale[2],
		); err != nil {
			return nil, fmt.Errorf("scanning pending spawn row: %w", err)
		}

		tr := model.NewTransform(pos, rot, scale)
		ev := spawn.NewSpawnEvent(model.GameObject(object), tr)
		pending = append(pending, spawn.PendingSpawn{
			ID:      id,
			Delayed: spawn.NewDelayedSpawnEvent(uint(delay), ev),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending spawn rows: %w", err)
	}

	return pending, nil
}

// ReplacePending atomically replaces all stored pending spawns.
func (r *PendingSpawnRepository) ReplacePending(ctx context.Context, pending []spawn.PendingSpawn) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("rollback failed", "table", "pending_spawns", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM pending_spawns`); err != nil {
		return fmt.Errorf("clearing pending spawns: %w", err)
	}

	if len(pending) > 0 {
		rows := make([][]any, 0, len(pending))
		for i, p := range pending {
			ev := p.Delayed.Event
			tr := ev.Transform
			rows = append(rows, []any{
				p.ID, int32(i), string(ev.Object), int64(p.Delayed.TickDelay),
				tr.Translation[0], tr.Translation[1], tr.Translation[2],
				tr.Rotation.V[0], tr.Rotation.V[1], tr.Rotation.V[2], tr.Rotation.W,
				tr.Scale[0], tr.Scale[1], tr.Scale[2],
			})
		}

		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"pending_spawns"},
			pendingSpawnColumns,
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("inserting pending spawns: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
