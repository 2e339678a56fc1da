// Package service runs the survival prediction pipeline: load, encode,
// explore, train, predict and report.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/survival/internal/adapters/csvfile"
	"github.com/okian/survival/internal/config"
	"github.com/okian/survival/internal/domain/encoding"
	"github.com/okian/survival/internal/domain/forest"
	"github.com/okian/survival/internal/domain/report"
	"github.com/okian/survival/internal/domain/stats"
	"github.com/okian/survival/internal/domain/table"
	"github.com/okian/survival/pkg/logger"
	"github.com/okian/survival/pkg/metrics"
)

// Stage names, used in errors, logs and metrics.
const (
	StageLoad       = "load"
	StagePreprocess = "preprocess"
	StageExplore    = "explore"
	StageTrain      = "train"
	StagePredict    = "predict"
)

const bannerWidth = 50

// Store loads the input tables and persists the output table.
type Store interface {
	Load(ctx context.Context, trainPath, testPath string) (train, test *table.Table, err error)
	WriteTable(destination string, t *table.Table) error
}

// Result is what one run produced.
type Result struct {
	RunID       string
	TrainRows   int
	TestRows    int
	Features    []string
	Rates       stats.Rates
	Model       forest.Info
	Drift       encoding.Drift
	Predictions []int
	Summary     report.Summary
	OutputPath  string
}

// Service runs the pipeline once per Run call.
type Service struct {
	cfg     *config.Config
	store   Store
	out     io.Writer
	logger  logger.Logger
	metrics *metrics.Manager
	now     func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the pipeline configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithStore sets where tables are read from and written to.
func WithStore(store Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithOutput sets the destination of the progress report.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a Service with the default configuration, a CSV store,
// stdout as report destination and the global metrics manager.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:     config.New(),
		store:   csvfile.New(),
		out:     os.Stdout,
		metrics: metrics.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.New()
	}
	return s
}

// run carries the state handed from one stage to the next.
type run struct {
	train, test *table.Table
	encoded     *encoding.Result
	testX       *encoding.Matrix
	model       *forest.Forest
	res         *Result
	log         logger.Logger
}

// Run executes the five stages in order. The first failure aborts the run and
// is returned wrapped with its stage name. No output file is written unless
// every earlier stage succeeded.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := s.logger.With(logger.String("run_id", runID))
	r := &run{res: &Result{RunID: runID, OutputPath: s.cfg.OutputPath}, log: log}
	started := s.now()

	p := &printer{w: s.out}
	p.rule()
	p.line("%s", "Titanic Survival Prediction Pipeline")
	p.rule()

	stages := []struct {
		name  string
		title string
		fn    func(context.Context, *run, *printer) error
	}{
		{StageLoad, "Loading data...", s.load},
		{StagePreprocess, "Preprocessing features...", s.preprocess},
		{StageExplore, "Exploratory analysis...", s.explore},
		{StageTrain, "Training Random Forest model...", s.trainModel},
		{StagePredict, "Generating predictions...", s.predict},
	}
	for i, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, s.fail(ctx, log, st.name, err)
		}
		p.line("\n[%d/%d] %s", i+1, len(stages), st.title)
		t0 := s.now()
		err := st.fn(ctx, r, p)
		s.metrics.ObserveStage(st.name, s.now().Sub(t0))
		if err == nil {
			err = p.err
		}
		if err != nil {
			return nil, s.fail(ctx, log, st.name, err)
		}
		log.Debug(ctx, "stage done", logger.String("stage", st.name), logger.Duration("took", s.now().Sub(t0)))
	}

	p.line("\n%s", strings.Repeat("=", bannerWidth))
	p.line("%s", "Pipeline completed successfully!")
	p.rule()
	if p.err != nil {
		return nil, s.fail(ctx, log, StagePredict, p.err)
	}

	s.metrics.RecordRun("success")
	s.metrics.MarkSuccess(s.now())
	log.Info(ctx, "pipeline completed",
		logger.String("output", s.cfg.OutputPath),
		logger.Int("predictions", len(r.res.Predictions)),
		logger.Duration("took", s.now().Sub(started)),
	)
	return r.res, nil
}

func (s *Service) fail(ctx context.Context, log logger.Logger, stage string, err error) error {
	s.metrics.RecordStageError(stage)
	s.metrics.RecordRun("failure")
	log.Error(ctx, "pipeline failed", logger.String("stage", stage), logger.Error(err))
	return fmt.Errorf("%s: %w", stage, err)
}

func (s *Service) load(ctx context.Context, r *run, p *printer) error {
	train, test, err := s.store.Load(ctx, s.cfg.TrainPath, s.cfg.TestPath)
	if err != nil {
		return err
	}
	r.train, r.test = train, test
	r.res.TrainRows, r.res.TestRows = train.Len(), test.Len()
	s.metrics.SetRowsLoaded("train", train.Len())
	s.metrics.SetRowsLoaded("test", test.Len())

	p.line("  - Training set: %d passengers", train.Len())
	p.line("  - Test set: %d passengers", test.Len())
	return nil
}

func (s *Service) preprocess(ctx context.Context, r *run, p *printer) error {
	enc, err := encoding.Encode(r.train, r.test, s.cfg.Features, s.cfg.LabelColumn)
	if err != nil {
		return err
	}
	testX, drift, err := encoding.Reconcile(enc.Test, enc.Train)
	if err != nil {
		return err
	}
	if !drift.Empty() {
		r.log.Warn(ctx, "test features differ from training features",
			logger.Strings("zero_filled", drift.Added),
			logger.Strings("dropped", drift.Dropped),
		)
	}
	r.encoded, r.testX = enc, testX
	r.res.Features = enc.Train.Columns()
	r.res.Drift = drift
	s.metrics.SetFeatureCount(enc.Train.Cols())

	p.line("  - Features after encoding: [%s]", quoteList(r.res.Features))
	p.line("  - Training samples: %d", enc.Train.Rows())
	return nil
}

func (s *Service) explore(_ context.Context, r *run, p *printer) error {
	if len(s.cfg.Groups) == 0 {
		return nil
	}
	groups := make([]stats.Group, len(s.cfg.Groups))
	for i, g := range s.cfg.Groups {
		groups[i] = stats.Group{Name: g.Name, Value: g.Value}
	}
	rates, err := stats.GroupRates(r.train, s.cfg.GroupColumn, s.cfg.LabelColumn, groups)
	if err != nil {
		return err
	}
	r.res.Rates = rates
	for _, g := range s.cfg.Groups {
		label := g.Label
		if label == "" {
			label = g.Name
		}
		s.metrics.SetGroupRate(g.Name, rates[g.Name])
		p.line("  - %s: %.1f%%", label, rates[g.Name]*100)
	}
	return nil
}

func (s *Service) trainModel(_ context.Context, r *run, p *printer) error {
	model, err := forest.Train(r.encoded.Train, r.encoded.Labels, s.cfg.ForestParams())
	if err != nil {
		return err
	}
	r.model = model
	info := model.Info()
	r.res.Model = info
	s.metrics.SetTreesTrained(info.TreeCount)

	p.line("  - Number of trees: %d", info.TreeCount)
	p.line("  - Max depth: %d", info.MaxDepth)
	p.line("  - Features used: %d", info.FeatureCount)
	return nil
}

func (s *Service) predict(_ context.Context, r *run, p *printer) error {
	preds, err := report.GeneratePredictions(r.model, r.testX)
	if err != nil {
		return err
	}
	summary, err := report.Summarize(preds)
	if err != nil {
		return err
	}
	if err := report.CreateSubmission(s.store, p, r.test, s.cfg.IDColumn, s.cfg.LabelColumn, preds, s.cfg.OutputPath); err != nil {
		return err
	}
	if err := report.PrintSummary(p, preds); err != nil {
		return err
	}
	r.res.Predictions = preds
	r.res.Summary = summary
	s.metrics.SetPredictions("survived", summary.Survived)
	s.metrics.SetPredictions("died", summary.Died)
	return nil
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "'" + it + "'"
	}
	return strings.Join(quoted, ", ")
}

// printer writes report lines and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	n, err := p.w.Write(b)
	p.err = err
	return n, err
}

func (p *printer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(p, format+"\n", args...)
}

func (p *printer) rule() { p.line("%s", strings.Repeat("=", bannerWidth)) }
