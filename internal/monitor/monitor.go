package monitor

import (
	"image"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/colortrig/colortrig/internal/config"
	apperrors "github.com/colortrig/colortrig/internal/errors"
	"github.com/colortrig/colortrig/internal/resilience"
	"github.com/colortrig/colortrig/internal/syncx"
)

// Capturer grabs one frame of the configured screen region.
type Capturer interface {
	Capture(region config.Region) (*image.RGBA, error)
}

// Stats is a point-in-time snapshot of loop activity.
type Stats struct {
	Running  bool
	Paused   bool
	FPS      float64
	Triggers int64
}

// Monitor owns the sampling loop and its lifecycle. Start spawns the
// loop, Stop joins it, Pause and Resume gate iterations without
// tearing the loop down. All control methods are safe to call from
// hotkey callbacks while the loop runs.
type Monitor struct {
	cfg        *syncx.RWGuard[config.Config]
	configPath string
	capturer   Capturer
	trigger    *Trigger
	breaker    *resilience.Breaker
	log        *slog.Logger

	running atomic.Bool
	paused  atomic.Bool
	fps     atomic.Uint64 // Float64bits

	mu   sync.Mutex
	done chan struct{}
}

// New creates a stopped monitor.
func New(cfg config.Config, configPath string, capturer Capturer, sink ActionSink) *Monitor {
	return &Monitor{
		cfg:        syncx.NewGuard(cfg),
		configPath: configPath,
		capturer:   capturer,
		trigger:    NewTrigger(sink),
		breaker:    resilience.New(resilience.CaptureConfig()),
		log:        slog.Default().With("component", "monitor"),
	}
}

// Start launches the sampling loop. Returns false if already running.
func (m *Monitor) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running.Load() {
		return false
	}
	m.running.Store(true)
	m.paused.Store(false)
	m.fps.Store(0)
	m.breaker.Reset()
	m.done = make(chan struct{})
	go m.run(m.done)
	m.log.Info("monitor started")
	return true
}

// Stop signals the loop and waits for it to exit. Returns false if the
// monitor was not running or the loop failed to stop within the
// timeout; in the latter case the loop still exits on its own once its
// current iteration completes.
func (m *Monitor) Stop() bool {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	if !m.running.CompareAndSwap(true, false) {
		return false
	}
	m.paused.Store(false)

	if done != nil {
		select {
		case <-done:
		case <-time.After(StopTimeout):
			m.log.Warn("sampling loop slow to stop", "timeout", StopTimeout)
			return false
		}
	}
	m.log.Info("monitor stopped", "triggers", m.trigger.Count())
	return true
}

// Pause suspends sampling without stopping the loop.
func (m *Monitor) Pause() bool {
	if !m.running.Load() || !m.paused.CompareAndSwap(false, true) {
		return false
	}
	m.log.Info("monitor paused")
	return true
}

// Resume continues sampling after a pause.
func (m *Monitor) Resume() bool {
	if !m.running.Load() || !m.paused.CompareAndSwap(true, false) {
		return false
	}
	m.log.Info("monitor resumed")
	return true
}

// Running reports whether the loop is active (paused counts as running).
func (m *Monitor) Running() bool { return m.running.Load() }

// Paused reports whether sampling is suspended.
func (m *Monitor) Paused() bool { return m.paused.Load() }

// Stats returns current loop statistics.
func (m *Monitor) Stats() Stats {
	return Stats{
		Running:  m.running.Load(),
		Paused:   m.paused.Load(),
		FPS:      math.Float64frombits(m.fps.Load()),
		Triggers: m.trigger.Count(),
	}
}

// Config returns a snapshot of the live configuration.
func (m *Monitor) Config() config.Config {
	return m.cfg.Get()
}

// UpdateConfig validates cfg, makes it live for the next iteration and
// persists it. A validation failure leaves the live record untouched.
func (m *Monitor) UpdateConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.cfg.Set(cfg)
	if err := config.Save(m.configPath, cfg); err != nil {
		return err
	}
	m.log.Info("configuration updated",
		"region", cfg.Region, "threshold", cfg.ThresholdPercent, "key", cfg.PressKey)
	return nil
}

// active reports whether this run should keep iterating: the monitor
// is running and done still identifies the current run. A Stop that
// timed out on a stuck capture followed by Start spawns a fresh loop;
// the stale one must exit once it unblocks instead of sampling
// alongside the replacement.
func (m *Monitor) active(done chan struct{}) bool {
	if !m.running.Load() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done == done
}

// run is the sampling loop. Each pass reads a fresh config snapshot,
// so updates apply on the next iteration without a restart.
func (m *Monitor) run(done chan struct{}) {
	defer close(done)

	frames := 0
	windowStart := time.Now()

	for m.active(done) {
		if m.paused.Load() {
			time.Sleep(PausePollInterval)
			windowStart = time.Now()
			frames = 0
			continue
		}

		start := time.Now()
		cfg := m.cfg.Get()

		if err := m.iterate(cfg); err != nil {
			if !apperrors.IsCode(err, apperrors.CodeCaptureFailed) || m.breaker.State() != resilience.Open {
				m.log.Error("iteration failed", "error", err)
			}
			time.Sleep(FaultBackoff)
		} else {
			frames++
			if elapsed := time.Since(windowStart); elapsed >= StatsWindow {
				m.fps.Store(math.Float64bits(float64(frames) / elapsed.Seconds()))
				frames = 0
				windowStart = time.Now()
			}
		}

		// Sleep toward the cadence measured from iteration start, so
		// work time is absorbed rather than added to the interval.
		if remaining := cfg.CheckInterval() - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// iterate runs one capture-match-decide pass. A panic anywhere inside
// is converted to an error so a single bad frame cannot kill the loop.
func (m *Monitor) iterate(cfg config.Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Newf(apperrors.CodeInternal, "iteration panic: %v", r)
		}
	}()

	if berr := m.breaker.Allow(); berr != nil {
		return apperrors.Wrap(berr, apperrors.CodeCaptureFailed, "capture suppressed")
	}

	frame, cerr := m.capturer.Capture(cfg.Region)
	if cerr != nil {
		m.breaker.Failure()
		return cerr
	}
	m.breaker.Success()

	ratio := MatchRatio(frame, cfg.TargetColor, cfg.ColorTolerance)
	if ratio >= cfg.ThresholdPercent {
		if m.trigger.Invoke(cfg.PressKey, cfg.Cooldown(), cfg.PressDelay()) {
			m.log.Debug("trigger accepted", "ratio", ratio, "threshold", cfg.ThresholdPercent)
		}
	}
	return nil
}

// Trigger exposes the trigger for status reporting and tests.
func (m *Monitor) Trigger() *Trigger { return m.trigger }
