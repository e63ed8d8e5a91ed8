package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jpsworld/server/internal/config"
	"github.com/jpsworld/server/internal/data"
	"github.com/jpsworld/server/internal/pathfind"
	"github.com/jpsworld/server/internal/persist"
	"github.com/jpsworld/server/internal/scripting"
	"go.uber.org/zap"
)

// buildGrid assembles the walkability grid from every configured map
// source, in order: YAML definition (which may also set the size), text
// block list, database table, Lua scripts.
func buildGrid(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pathfind.Grid, error) {
	width, height := cfg.World.Width, cfg.World.Height

	var def *data.MapDef
	if cfg.World.MapYAML != "" {
		var err error
		def, err = data.LoadMapDef(cfg.World.MapYAML)
		if err != nil {
			return nil, err
		}
		if def.Width > 0 && def.Height > 0 {
			width, height = def.Width, def.Height
		}
	}

	grid := pathfind.NewGrid(width, height)

	if def != nil {
		applyBlocks(grid, def.Cells(), "yaml", log)
		printOK(fmt.Sprintf("YAML 地圖 %s", cfg.World.MapYAML))
	}

	if cfg.World.MapFile != "" {
		pts, err := data.LoadBlockList(cfg.World.MapFile)
		if err != nil {
			return nil, err
		}
		applyBlocks(grid, pts, "text", log)
		printStat("文字地圖阻擋格", len(pts))
	}

	if cfg.Database.DSN != "" {
		pts, err := loadDBBlocks(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		applyBlocks(grid, pts, "database", log)
		printStat(fmt.Sprintf("資料庫地圖 %s", cfg.Database.MapName), len(pts))
	}

	if cfg.World.ScriptDir != "" {
		lua := scripting.NewEngine(grid, log)
		defer lua.Close()
		if err := lua.RunDir(cfg.World.ScriptDir); err != nil {
			return nil, fmt.Errorf("map scripts: %w", err)
		}
		printStat("Lua 腳本變更格數", lua.Changed())
	}

	return grid, nil
}

func applyBlocks(grid *pathfind.Grid, pts []pathfind.Point, source string, log *zap.Logger) {
	outside := data.BlockAll(grid, pts)
	if len(outside) > 0 {
		log.Warn("地圖阻擋格超出範圍，已略過",
			zap.String("source", source),
			zap.Int("count", len(outside)),
			zap.Stringer("first", outside[0]),
		)
	}
}

func loadDBBlocks(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) ([]pathfind.Point, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL 連線成功")

	if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	printOK("資料庫遷移完成")

	return persist.NewMapRepo(db).LoadBlocked(ctx, cfg.MapName)
}
