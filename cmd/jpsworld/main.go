package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jpsworld/server/internal/config"
	coresys "github.com/jpsworld/server/internal/core/system"
	"github.com/jpsworld/server/internal/handler"
	gonet "github.com/jpsworld/server/internal/net"
	"github.com/jpsworld/server/internal/net/packet"
	"github.com/jpsworld/server/internal/pathfind"
	"github.com/jpsworld/server/internal/system"
	"github.com/jpsworld/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             jpsworld  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       JPS 尋路 · 區塊視野 · 移動同步      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

// displayWidth counts CJK runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		if r > 0x7F {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("JPSWORLD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Build the map
	printSection("地圖")
	grid, err := buildGrid(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("map: %w", err)
	}
	printStat(fmt.Sprintf("地圖 %dx%d 阻擋格", grid.Width(), grid.Height()), grid.BlockedCount())
	fmt.Println()

	// 4. World state
	finder, err := pathfind.New(cfg.World.Algorithm, grid)
	if err != nil {
		return fmt.Errorf("path finder: %w", err)
	}
	ws := world.NewState(grid, finder, world.Options{
		SectorSize:    cfg.World.SectorSize,
		Speed:         cfg.World.Speed,
		ArriveEpsilon: cfg.World.ArriveEpsilon,
		Seed:          cfg.World.Seed,
	}, log.With(zap.String("component", "world")))
	cols, rows := ws.Sectors().Dims()
	printSection("世界")
	printOK(fmt.Sprintf("尋路演算法: %s", finder.Name()))
	printStat("區塊數量", int(cols*rows))
	fmt.Println()

	// 5. Packet handlers
	store := gonet.NewSessionStore(log)
	deps := &handler.Deps{
		Config: cfg,
		Log:    log,
		World:  ws,
		Out:    store,
		Now:    time.Now,
	}
	pktReg := packet.NewRegistry(log)
	handler.RegisterAll(pktReg, deps)
	hooks := handler.NewHooks(pktReg, deps)

	// 6. Listeners
	sessOpts := gonet.SessionOptions{
		OutQueueSize:     cfg.Network.OutQueueSize,
		PacketsPerSecond: cfg.Network.PacketsPerSecond,
		ReadTimeout:      cfg.Network.ReadTimeout,
		WriteTimeout:     cfg.Network.WriteTimeout,
	}
	netServer, err := gonet.NewServer(cfg.Network.BindAddress, sessOpts, store, hooks, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	var wsServer *gonet.WSServer
	if cfg.Network.WSBindAddress != "" {
		wsServer, err = gonet.NewWSServer(cfg.Network.WSBindAddress, cfg.Network.WSPath, sessOpts, store, hooks, log)
		if err != nil {
			netServer.Shutdown()
			return fmt.Errorf("ws server: %w", err)
		}
	}

	// 7. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewIdleSystem(deps, cfg.World.IdleTimeout))
	runner.Register(system.NewMovementSystem(deps))
	runner.Register(system.NewTickStats(ws, time.Second, log.With(zap.String("component", "tick"))))

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	if wsServer != nil {
		printReady(fmt.Sprintf("WebSocket ws://%s%s", wsServer.Addr().String(), cfg.Network.WSPath))
	}
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.World.TickRate))
	fmt.Println()

	// 8. Run until a signal or a listener failure
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		netServer.AcceptLoop()
		return nil
	})
	if wsServer != nil {
		g.Go(wsServer.Serve)
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.World.TickRate)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				dt := now.Sub(last)
				last = now
				ws.Lock()
				runner.Tick(dt)
				ws.Unlock()
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("收到關閉信號，停止伺服器")
		netServer.Shutdown()
		if wsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := wsServer.Shutdown(shutdownCtx); err != nil {
				log.Warn("websocket 關閉逾時", zap.Error(err))
			}
		}
		store.CloseAll()
		return nil
	})

	err = g.Wait()
	log.Info("伺服器已停止", zap.Int("sessions", store.Count()))
	return err
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
