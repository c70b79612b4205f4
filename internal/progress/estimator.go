// Package progress tracks how many files a scan has processed and how fast.
//
// スキャン対象の総数は走査が終わるまで分からないため、Total は通常 -1 (不明)
// のまま進み、Complete の時点で確定する。
package progress

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Unknown は総ファイル数がまだ分からないことを表す。
const Unknown = -1

// Snapshot は Estimator のある時点の状態。
type Snapshot struct {
	Processed int           `json:"processed"`
	Total     int           `json:"total"`
	RateEMA   float64       `json:"rate_per_sec"`
	RateP50   float64       `json:"rate_p50"`
	Warmup    bool          `json:"warmup"`
	Final     bool          `json:"final"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Known reports whether the total file count has been settled.
func (s Snapshot) Known() bool { return s.Total >= 0 }

// Config は平滑化と通知間隔の設定。ゼロ値のフィールドは既定値で補われる。
type Config struct {
	Alpha          float64
	WindowSize     int
	WarmupSamples  int
	WarmupDuration time.Duration
	NotifyInterval time.Duration
}

// DefaultConfig returns the tuning used by the CLI.
func DefaultConfig() Config {
	return Config{
		Alpha:          0.2,
		WindowSize:     60,
		WarmupSamples:  20,
		WarmupDuration: time.Second,
		NotifyInterval: 250 * time.Millisecond,
	}
}

// Estimator は並行に Advance されても連番で件数を数える。
type Estimator struct {
	mu         sync.Mutex
	cfg        Config
	now        func() time.Time
	start      time.Time
	lastUpdate time.Time
	lastNotify time.Time
	total      int
	processed  int
	final      bool
	ema        float64
	rates      rateWindow
}

// NewEstimator starts the clock. total may be Unknown.
func NewEstimator(total int, cfg Config) *Estimator {
	return newEstimatorAt(total, cfg, time.Now)
}

func newEstimatorAt(total int, cfg Config, now func() time.Time) *Estimator {
	base := DefaultConfig()
	if cfg.Alpha > 0 && cfg.Alpha <= 1 {
		base.Alpha = cfg.Alpha
	}
	if cfg.WindowSize > 0 {
		base.WindowSize = cfg.WindowSize
	}
	if cfg.WarmupSamples > 0 {
		base.WarmupSamples = cfg.WarmupSamples
	}
	if cfg.WarmupDuration > 0 {
		base.WarmupDuration = cfg.WarmupDuration
	}
	if cfg.NotifyInterval > 0 {
		base.NotifyInterval = cfg.NotifyInterval
	}
	if total < 0 {
		total = Unknown
	}
	t := now()
	return &Estimator{
		cfg:        base,
		now:        now,
		start:      t,
		lastUpdate: t,
		total:      total,
		rates:      rateWindow{size: base.WindowSize},
	}
}

// Advance records delta processed files. notify is true when enough time has
// passed since the last published snapshot.
func (e *Estimator) Advance(delta int) (snap Snapshot, notify bool) {
	if delta <= 0 {
		return e.Snapshot(), false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	if now.Before(e.lastUpdate) {
		now = e.lastUpdate
	}
	dt := now.Sub(e.lastUpdate).Seconds()
	if dt <= 0 {
		dt = 1e-6
	}
	e.processed += delta
	instant := float64(delta) / dt
	if math.IsNaN(instant) || math.IsInf(instant, 0) || instant < 0 {
		instant = 0
	}
	if e.ema == 0 {
		e.ema = instant
	} else {
		e.ema = e.cfg.Alpha*instant + (1-e.cfg.Alpha)*e.ema
	}
	e.rates.add(instant)
	e.lastUpdate = now

	snap = e.snapshotLocked(now)
	if now.Sub(e.lastNotify) >= e.cfg.NotifyInterval {
		e.lastNotify = now
		notify = true
	}
	return snap, notify
}

// Snapshot returns the current state without advancing.
func (e *Estimator) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.now())
}

// Complete settles the total at the processed count and returns the final
// snapshot. Later calls return the same totals.
func (e *Estimator) Complete() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.final = true
	e.total = e.processed
	now := e.now()
	e.lastNotify = now
	return e.snapshotLocked(now)
}

func (e *Estimator) snapshotLocked(now time.Time) Snapshot {
	elapsed := now.Sub(e.start)
	warm := e.processed >= e.cfg.WarmupSamples && elapsed >= e.cfg.WarmupDuration
	p50 := e.rates.median()
	if p50 <= 0 {
		p50 = e.ema
	}
	return Snapshot{
		Processed: e.processed,
		Total:     e.total,
		RateEMA:   e.ema,
		RateP50:   p50,
		Warmup:    !warm,
		Final:     e.final,
		StartedAt: e.start,
		UpdatedAt: now,
		Elapsed:   elapsed,
	}
}

// rateWindow は直近 size 件の瞬間レートを保持する。
type rateWindow struct {
	size   int
	values []float64
}

func (w *rateWindow) add(v float64) {
	if w.size <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if len(w.values) < w.size {
		w.values = append(w.values, v)
		return
	}
	copy(w.values, w.values[1:])
	w.values[len(w.values)-1] = v
}

func (w *rateWindow) median() float64 {
	n := len(w.values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), w.values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
