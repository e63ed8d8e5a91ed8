package system

import (
	"time"

	coresys "github.com/jpsworld/server/internal/core/system"
	"github.com/jpsworld/server/internal/world"
	"go.uber.org/zap"
)

// TickStats counts ticks and logs the achieved update rate once per
// interval. PhaseCleanup, last in the tick.
type TickStats struct {
	world    *world.State
	log      *zap.Logger
	interval time.Duration

	ticks   int
	elapsed time.Duration
	slowest time.Duration
	total   uint64
}

func NewTickStats(ws *world.State, interval time.Duration, log *zap.Logger) *TickStats {
	return &TickStats{world: ws, interval: interval, log: log}
}

func (s *TickStats) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *TickStats) Update(dt time.Duration) {
	s.ticks++
	s.total++
	s.elapsed += dt
	if dt > s.slowest {
		s.slowest = dt
	}
	if s.elapsed < s.interval {
		return
	}

	rate := float64(s.ticks) / s.elapsed.Seconds()
	s.log.Debug("tick 統計",
		zap.Float64("ups", rate),
		zap.Duration("max_dt", s.slowest),
		zap.Int("actors", s.world.ActorCount()),
	)
	s.ticks = 0
	s.elapsed = 0
	s.slowest = 0
}

// Total is the number of ticks run since start.
func (s *TickStats) Total() uint64 { return s.total }
