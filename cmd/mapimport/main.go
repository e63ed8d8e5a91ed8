// mapimport loads a text ("x y" per line) or YAML map and stores its
// blocked cells in the map_blocks table.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jpsworld/server/internal/config"
	"github.com/jpsworld/server/internal/data"
	"github.com/jpsworld/server/internal/pathfind"
	"github.com/jpsworld/server/internal/persist"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: mapimport <map.txt|map.yaml> [map_name]")
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "mapimport: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, rest []string) error {
	cfgPath := "config/server.toml"
	if p := os.Getenv("JPSWORLD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("no [database] dsn in %s", cfgPath)
	}

	mapName := cfg.Database.MapName
	if len(rest) > 0 {
		mapName = rest[0]
	}

	pts, err := readMap(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := persist.RunMigrations(ctx, db.Pool, nil); err != nil {
		return err
	}

	n, err := persist.NewMapRepo(db).ReplaceBlocked(ctx, mapName, pts)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d blocked cells into map %q (%d read from %s)\n", n, mapName, len(pts), path)
	return nil
}

// readMap picks the loader by file extension.
func readMap(path string) ([]pathfind.Point, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		def, err := data.LoadMapDef(path)
		if err != nil {
			return nil, err
		}
		return def.Cells(), nil
	default:
		return data.LoadBlockList(path)
	}
}
