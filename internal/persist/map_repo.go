package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jpsworld/server/internal/pathfind"
)

// MapRepo stores blocked cells per named map in map_blocks.
type MapRepo struct {
	db *DB
}

func NewMapRepo(db *DB) *MapRepo {
	return &MapRepo{db: db}
}

// LoadBlocked returns every blocked cell of the map, ordered by row.
func (r *MapRepo) LoadBlocked(ctx context.Context, mapName string) ([]pathfind.Point, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT x, y FROM map_blocks WHERE map_name = $1 ORDER BY y, x`,
		mapName,
	)
	if err != nil {
		return nil, fmt.Errorf("query map blocks: %w", err)
	}
	defer rows.Close()

	var pts []pathfind.Point
	for rows.Next() {
		var p pathfind.Point
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("scan map block: %w", err)
		}
		pts = append(pts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate map blocks: %w", err)
	}
	return pts, nil
}

// ReplaceBlocked swaps the map's blocked cells for pts in one
// transaction. Duplicate cells are written once. Returns the number of
// rows stored.
func (r *MapRepo) ReplaceBlocked(ctx context.Context, mapName string, pts []pathfind.Point) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("map blocks begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM map_blocks WHERE map_name = $1`, mapName); err != nil {
		return 0, fmt.Errorf("clear map blocks: %w", err)
	}

	seen := make(map[pathfind.Point]struct{}, len(pts))
	rows := make([][]any, 0, len(pts))
	for _, p := range pts {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		rows = append(rows, []any{mapName, p.X, p.Y})
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"map_blocks"},
		[]string{"map_name", "x", "y"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy map blocks: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("map blocks commit: %w", err)
	}
	return n, nil
}

// Maps lists the map names that have stored cells.
func (r *MapRepo) Maps(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT map_name FROM map_blocks ORDER BY map_name`)
	if err != nil {
		return nil, fmt.Errorf("query map names: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect map names: %w", err)
	}
	return names, nil
}
