package nexusedge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avanlier/NexusEdge/internal/adapters/nexus"
	"github.com/avanlier/NexusEdge/internal/adapters/observability"
	"github.com/avanlier/NexusEdge/internal/adapters/recorder"
	"github.com/avanlier/NexusEdge/internal/adapters/sink"
	"github.com/avanlier/NexusEdge/internal/app/pipeline"
	"github.com/avanlier/NexusEdge/internal/domain"
	"github.com/avanlier/NexusEdge/internal/driver"
	"github.com/avanlier/NexusEdge/internal/ports"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	driver   driver.Driver
	source   ports.BlockSource
	sink     ports.BlockSink
	recorder ports.Recorder
	obs      ports.Observability
}

// WithDriver injects a Driver implementation in place of the native DLL
// binding (simulators, replays, tests).
func WithDriver(d Driver) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.driver = d
	}
}

// WithSource bypasses device negotiation entirely and polls the given
// source instead.
func WithSource(s BlockSource) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.source = s
	}
}

// WithSink injects a custom sink so blocks can be sent to any database or API.
func WithSink(s BlockSink) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.sink = s
	}
}

// WithRecorder lets callers bring their own journal implementation.
func WithRecorder(r Recorder) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.recorder = r
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.obs = obs
	}
}

// Runtime wires up the device source → journal → sink polling pipeline and
// exposes simple lifecycle hooks for embedding NexusEdge in any Go service.
type Runtime struct {
	cfg    *Config
	policy ports.Policy
	obs    ports.Observability
	rec    ports.Recorder
	src    ports.BlockSource
	sink   ports.BlockSink
	db     *sql.DB

	metricsSrv  *http.Server
	gaugeStopCh chan struct{}
	pollCancel  context.CancelFunc
	pollDoneCh  chan struct{}
}

// NewRuntime bootstraps the default adapters (native device source, file
// journal, Timescale sink, Prometheus observability) and performs the full
// device connect sequence. Construction fails outright if the device cannot
// be connected; no partially started runtime is returned.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.obs
	if obs == nil {
		obs = observability.NewPromObs()
	}

	rec := overrides.recorder
	if rec == nil {
		var err error
		rec, err = recorder.NewFileRecorder(cfg.Recorder.Dir)
		if err != nil {
			return nil, err
		}
	}

	var src ports.BlockSource

	// The runtime owns the recorder and source from here on, same as in
	// Shutdown; a failed construction must not leave their handles open.
	fail := func(err error) (*Runtime, error) {
		if src != nil {
			_ = src.Close()
		}
		if c, ok := rec.(interface{ Close() error }); ok {
			_ = c.Close()
		}
		return nil, err
	}

	src = overrides.source
	if src == nil {
		drv := overrides.driver
		if drv == nil {
			var err error
			drv, err = driver.Load(cfg.Device.DriverDir)
			if err != nil {
				return fail(err)
			}
		}
		mode, err := driver.ParseSearchMode(cfg.Device.SearchMode)
		if err != nil {
			return fail(err)
		}
		a, err := nexus.Open(nexus.Config{
			SamplingRate: cfg.Device.SamplingRate,
			SearchMode:   mode,
			SerialNumber: cfg.Device.SerialNumber,
		}, drv, obs)
		if err != nil {
			return fail(err)
		}
		src = a
	}

	var (
		db  *sql.DB
		snk ports.BlockSink
	)
	if overrides.sink != nil {
		snk = overrides.sink
	} else {
		var err error
		db, err = sql.Open("postgres", cfg.Timescale.ConnString)
		if err != nil {
			return fail(err)
		}
		snk = sink.NewTimescaleSink(db, cfg.Timescale.Table, src.Device().Serial.Raw)
	}

	replayJournalIntoSink(rec, snk, obs)

	return &Runtime{
		cfg:    cfg,
		policy: cfg.Policy,
		obs:    obs,
		rec:    rec,
		src:    src,
		sink:   snk,
		db:     db,
	}, nil
}

// Source exposes the block source so embedders can poll it directly instead
// of running the built-in pipeline.
func (r *Runtime) Source() BlockSource { return r.src }

// Start launches the polling pipeline and the observability stack. It
// returns immediately; call Run to block on a context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.pollCancel = cancel
	r.pollDoneCh = make(chan struct{})
	go func() {
		pipeline.RunPollPipeline(ctx, r.src, r.rec, r.sink, r.policy, r.obs)
		close(r.pollDoneCh)
	}()

	r.startMetrics()
	return nil
}

// Run starts the runtime and blocks until the provided context is
// cancelled, then attempts a graceful shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops the polling pipeline, the metrics server, native
// streaming, and the DB connection.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.pollCancel != nil {
		r.pollCancel()
		<-r.pollDoneCh
	}

	if r.gaugeStopCh != nil {
		close(r.gaugeStopCh)
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if r.src != nil {
		if err := r.src.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c, ok := r.rec.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()

	r.gaugeStopCh = make(chan struct{})
	go r.recordResourceGauges(r.gaugeStopCh, time.Second)
}

func (r *Runtime) recordResourceGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := r.rec.Stats()
			r.obs.SetGauge("nexus_recorder_size_bytes", float64(stats.SizeBytes))
			if p, ok := r.src.(interface{ PendingBlocks() int }); ok {
				r.obs.SetGauge("nexus_buffer_blocks", float64(p.PendingBlocks()))
			}
		}
	}
}

// replayJournalIntoSink pushes journal entries the sink never acknowledged
// from a previous session. A sink failure stops replay and leaves the rest
// uncommitted for the next attempt; it never blocks construction.
func replayJournalIntoSink(rec ports.Recorder, snk ports.BlockSink, obs ports.Observability) {
	stats := rec.Stats()
	if stats.LatestAppended == 0 {
		return
	}
	start := stats.OldestUncommitted
	if start == 0 || start > stats.LatestAppended {
		return
	}

	var (
		replayed int
		lastOK   ports.EntryID
	)
	err := rec.Iterate(start, func(id ports.EntryID, b *domain.SampleBlock) error {
		if werr := snk.WriteBlock(b); werr != nil {
			return werr
		}
		lastOK = id
		replayed++
		return nil
	})
	if lastOK > 0 {
		if cerr := rec.Commit(lastOK); cerr != nil {
			obs.LogError("recorder_commit_failed", cerr)
		}
	}
	if err != nil {
		obs.LogError("journal_replay_interrupted", err,
			ports.Field{Key: "replayed", Value: replayed})
		return
	}
	if replayed > 0 {
		if terr := rec.TruncateCommitted(); terr != nil {
			obs.LogError("recorder_truncate_failed", terr)
		}
		obs.LogInfo("journal_replay_complete",
			ports.Field{Key: "blocks", Value: replayed},
			ports.Field{Key: "from_id", Value: start})
	}
}
