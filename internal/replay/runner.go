package replay

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/time/rate"

	"github.com/quantfold/shadowbench/config"
	"github.com/quantfold/shadowbench/internal/fill"
	"github.com/quantfold/shadowbench/internal/numeric"
	"github.com/quantfold/shadowbench/internal/observability"
	"github.com/quantfold/shadowbench/internal/persistence"
	"github.com/quantfold/shadowbench/internal/schema"
	"github.com/quantfold/shadowbench/internal/timeutil"
)

// metricFillCost is the metric name attached to every persisted row.
const metricFillCost = "fill_cost"

// Runner replays an A and a B event stream through independent fill models
// seeded identically, so any divergence between the two reports comes from the
// event streams themselves rather than the random source.
type Runner struct {
	cfg     config.Settings
	writer  *persistence.Writer
	limiter *rate.Limiter
}

// NewRunner wires a runner and its persistence pipeline from settings.
func NewRunner(ctx context.Context, cfg config.Settings) (*Runner, error) {
	writer, err := persistence.NewWriter(ctx, persistenceConfig(cfg.Batch))
	if err != nil {
		return nil, err
	}
	persistence.ObserveWriterMetrics(writer, cfg.Run.RunID)
	return newRunnerWithWriter(cfg, writer), nil
}

func newRunnerWithWriter(cfg config.Settings, writer *persistence.Writer) *Runner {
	r := &Runner{cfg: cfg, writer: writer}
	if pace := cfg.Replay.MaxEventsPerSec; pace > 0 {
		burst := int(pace)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(pace), burst)
	}
	return r
}

func persistenceConfig(b config.BatchConfig) persistence.Config {
	return persistence.Config{
		Backend:         persistence.BackendKind(b.Backend),
		BatchSize:       b.BatchSize,
		FlushInterval:   b.FlushInterval(),
		QueueMaxBatches: b.QueueMaxBatches,
		ClickHouseURL:   b.ClickHouseURL,
		TimescaleDSN:    b.TimescaleDSN,
		Table:           b.Table,
	}
}

func fillConfig(f config.FillConfig) fill.Config {
	return fill.Config{
		Mode:         fill.SlippageMode(f.Mode),
		TickSize:     f.TickSize,
		BPS:          f.BPS,
		PctSpread:    f.PctSpread,
		HybridWeight: f.HybridWeight,
		BidAskAware:  f.BidAskAware,
		Seed:         f.Seed,
	}
}

// Run replays both streams concurrently, persists per-event cost rows, and
// returns the comparative report. The persistence pipeline is started before
// the first event and fully drained before the report is assembled.
func (r *Runner) Run(ctx context.Context, eventsA, eventsB []Event) (Report, error) {
	SortEvents(eventsA)
	SortEvents(eventsB)

	modelA, err := fill.New(fillConfig(r.cfg.Fill))
	if err != nil {
		return Report{}, err
	}
	modelB, err := fill.New(fillConfig(r.cfg.Fill))
	if err != nil {
		return Report{}, err
	}

	if dir := r.cfg.Replay.ArtifactsDir; dir != "" {
		path, err := WriteConfigSnapshot(dir, r.cfg)
		if err != nil {
			return Report{}, err
		}
		observability.Log().Info("wrote config snapshot",
			observability.Field{Key: "path", Value: path})
	}

	r.writer.Start()

	var (
		resultA, resultB StreamResult
		errA, errB       error
		wg               conc.WaitGroup
	)
	wg.Go(func() { resultA, errA = r.simulate(ctx, "A", modelA, eventsA) })
	wg.Go(func() { resultB, errB = r.simulate(ctx, "B", modelB, eventsB) })
	wg.Wait()

	r.writer.Stop()

	if err := observability.AggregateErrors("replay", []error{errA, errB},
		observability.Field{Key: "run_id", Value: r.cfg.Run.RunID}); err != nil {
		return Report{}, err
	}

	return Report{
		RunID:   r.cfg.Run.RunID,
		StratID: r.cfg.Run.StratID,
		A:       resultA,
		B:       resultB,
		Writer:  r.writer.Metrics(),
	}, nil
}

func (r *Runner) simulate(ctx context.Context, label string, model *fill.Model, events []Event) (StreamResult, error) {
	var (
		res      StreamResult
		slipCost numeric.KahanSum
		batch    = make([]schema.MetricRow, 0, r.batchSize())
		start    = time.Now()
	)
	for _, ev := range events {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return res, err
			}
		}
		snap := ev.Snapshot()
		intent := ev.Intent()
		outcome := model.Fill(snap, intent)

		res.Events++
		switch outcome.Status {
		case schema.FillStatusFilled, schema.FillStatusTriggered:
			res.Fills++
		case schema.FillStatusPartial:
			res.Fills++
			res.Partials++
		}
		slipCost.Add(outcome.SlipCost)

		batch = append(batch, schema.MetricRow{
			RunID:  r.cfg.Run.RunID,
			TS:     timeutil.EpochToUTCISO(ev.TS),
			Symbol: ev.Symbol,
			Metric: metricFillCost,
			Value:  outcome.SlipCost,
			Label:  label,
		})
		if len(batch) >= r.batchSize() {
			r.submit(label, batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		r.submit(label, batch)
	}

	elapsed := time.Since(start)
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}
	res.SlipCost = slipCost.Value()
	res.EventsPerSec = float64(res.Events) / elapsed.Seconds()
	if res.Events > 0 {
		res.FillRate = float64(res.Fills) / float64(res.Events)
	}
	if res.Fills > 0 {
		res.PartialFillRatio = float64(res.Partials) / float64(res.Fills)
	}
	return res, nil
}

// submit hands a copy of the batch to the writer; the caller reuses its slice.
func (r *Runner) submit(label string, batch []schema.MetricRow) {
	rows := make([]schema.MetricRow, len(batch))
	copy(rows, batch)
	if err := r.writer.Submit(rows); err != nil {
		observability.Log().Error("batch submit rejected",
			observability.Field{Key: "stream", Value: label},
			observability.Field{Key: "rows", Value: len(rows)},
			observability.Field{Key: "error", Value: err.Error()})
	}
}

func (r *Runner) batchSize() int {
	if r.cfg.Batch.BatchSize > 0 {
		return r.cfg.Batch.BatchSize
	}
	return 5000
}
