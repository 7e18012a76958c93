package battery

import (
	"context"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/bydmon/internal/errors"
	"codeberg.org/mutker/bydmon/internal/logger"
)

// minInterval is the polling period floor. Configuration validates this
// too; the poller re-checks so it can never be started faster.
const minInterval = 10 * time.Second

// DeviceClient yields one snapshot per call or fails with one of the
// battery failure codes. Implementations must honor ctx cancellation.
type DeviceClient interface {
	FetchSnapshot(ctx context.Context) (*Snapshot, error)
}

// State is the poll loop state, observable for logging and tests.
type State int32

const (
	StateIdle State = iota
	StatePolling
	StateCommitted
	StateRetained
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateCommitted:
		return "committed"
	case StateRetained:
		return "retained"
	default:
		return "unknown"
	}
}

// Poller drives periodic snapshot acquisition. It is a single-consumer
// loop: a tick never starts while the previous fetch is outstanding, and
// it is the only writer of the cache. Fetch failures of any kind are
// logged and swallowed; the cache keeps the prior snapshot.
type Poller struct {
	client   DeviceClient
	cache    *Cache
	interval time.Duration
	timeout  time.Duration
	onCommit func(*Snapshot)
	state    atomic.Int32
}

func NewPoller(client DeviceClient, cache *Cache, interval, timeout time.Duration) (*Poller, error) {
	errFactory := errors.New()

	if interval < minInterval {
		return nil, errFactory.WithData(ErrInvalidInterval, struct {
			Interval time.Duration
			Minimum  time.Duration
		}{
			Interval: interval,
			Minimum:  minInterval,
		})
	}
	if client == nil || cache == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "poller requires a client and a cache")
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}

	return &Poller{
		client:   client,
		cache:    cache,
		interval: interval,
		timeout:  timeout,
	}, nil
}

// OnCommit registers a hook invoked after each successful commit. Must be
// set before Run.
func (p *Poller) OnCommit(fn func(*Snapshot)) {
	p.onCommit = fn
}

func (p *Poller) State() State {
	return State(p.state.Load())
}

func (p *Poller) setState(s State) {
	p.state.Store(int32(s))
}

// Run polls once immediately, then on every tick until ctx is canceled.
// The first poll failing does not abort the loop: the cache simply stays
// empty until a later poll succeeds. Run only returns after cancellation
// and never returns a fetch error.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			p.setState(StateIdle)
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll performs one fetch-validate-commit cycle.
func (p *Poller) poll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	p.setState(StatePolling)

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	start := time.Now()
	snapshot, err := p.client.FetchSnapshot(fetchCtx)
	cancel()
	pollDuration.Observe(time.Since(start).Seconds())

	// No commit may happen once cancellation was requested, even if the
	// fetch raced it and returned data.
	if ctx.Err() != nil {
		p.setState(StateRetained)
		return
	}

	if err != nil {
		status := FailureStatus(err)
		pollTotal.WithLabelValues(status).Inc()
		p.logFailure(status, err)
		p.setState(StateRetained)
		return
	}

	if !snapshot.Valid() {
		pollTotal.WithLabelValues("retained").Inc()
		logger.Warn().Msg("Discarding structurally invalid snapshot: tower data missing")
		p.setState(StateRetained)
		return
	}

	p.cache.Commit(snapshot)
	pollTotal.WithLabelValues("committed").Inc()
	snapshotTowers.Set(float64(len(snapshot.Towers)))
	p.setState(StateCommitted)

	logger.Debug().
		Int("towers", len(snapshot.Towers)).
		Str("serial", snapshot.SerialNumber()).
		Msg("Snapshot committed")

	if p.onCommit != nil {
		p.onCommit(snapshot)
	}
}

func (p *Poller) logFailure(status string, err error) {
	switch status {
	case "timeout", "connection_error":
		logger.Warn().Err(err).Str("status", status).Msg("Device poll failed, retaining previous snapshot")
	default:
		logger.Error().Err(err).Str("status", status).Msg("Device poll failed, retaining previous snapshot")
	}
}
