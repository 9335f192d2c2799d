package screening

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/garnet-screening/internal/common/batch"
	"github.com/turtacn/garnet-screening/internal/domain/element"
	dscreen "github.com/turtacn/garnet-screening/internal/domain/screening"
	"github.com/turtacn/garnet-screening/internal/domain/sustainability"
	"github.com/turtacn/garnet-screening/internal/domain/tolerance"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// Service defines the screening operations exposed to the CLI and HTTP layers.
type Service interface {
	// Run screens the request's template and returns ranked candidates.
	Run(ctx context.Context, req *Request) (*Result, error)
	// Tolerance evaluates the tolerance factor of four species labels placed
	// on the sites of template.
	Tolerance(ctx context.Context, input *ToleranceInput) (*ToleranceOutput, error)
	// Score computes the sustainability score of a formula string.
	Score(ctx context.Context, formula string) (*ScoreOutput, error)
	// Element returns the properties of one element.
	Element(ctx context.Context, symbol string) (*element.Element, error)
	// Elements returns every element of the property table in table order.
	Elements(ctx context.Context) ([]*element.Element, error)
}

// ResultCache stores finished results keyed by Request.CacheKey.
type ResultCache interface {
	Get(ctx context.Context, key string) (*Result, bool, error)
	Set(ctx context.Context, key string, result *Result) error
}

// Sink receives every finished, non-cached result.
type Sink interface {
	Name() string
	Publish(ctx context.Context, result *Result) error
}

// ToleranceInput names one species per site.  Coordinations default to the
// garnet template's.
type ToleranceInput struct {
	Species       []string `json:"species"`
	Coordinations []string `json:"coordinations,omitempty"`
}

// ToleranceOutput is the factor plus the band verdict.
type ToleranceOutput struct {
	Species    []element.Species `json:"species"`
	Result     tolerance.Result  `json:"result"`
	Band       tolerance.Band    `json:"band"`
	WithinBand bool              `json:"within_band"`
}

// ScoreOutput is a sustainability score with its mass fractions.
type ScoreOutput struct {
	Formula       string             `json:"formula"`
	Score         float64            `json:"score"`
	MassFractions map[string]float64 `json:"mass_fractions"`
}

// Option configures the service.
type Option func(*serviceImpl)

// WithCache enables the result cache.
func WithCache(c ResultCache) Option {
	return func(s *serviceImpl) { s.cache = c }
}

// WithSinks appends output sinks.
func WithSinks(sinks ...Sink) Option {
	return func(s *serviceImpl) { s.sinks = append(s.sinks, sinks...) }
}

// WithMetrics records run metrics on m.
func WithMetrics(m *prometheus.ScreeningMetrics) Option {
	return func(s *serviceImpl) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithBand sets the band used by Tolerance.  Run uses the request's band.
func WithBand(b tolerance.Band) Option {
	return func(s *serviceImpl) { s.band = b }
}

type serviceImpl struct {
	provider element.PropertyProvider
	logger   logging.Logger
	metrics  *prometheus.ScreeningMetrics
	cache    ResultCache
	sinks    []Sink
	band     tolerance.Band
	now      func() time.Time
}

// NewService creates a screening service over a read-only property provider.
func NewService(provider element.PropertyProvider, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		provider: provider,
		logger:   logger.Named("screening"),
		metrics:  prometheus.NewScreeningMetrics(nil),
		band:     tolerance.DefaultBand(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Run(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	start := s.now()
	key := req.CacheKey()
	if cached := s.lookupCache(ctx, key); cached != nil {
		return cached, nil
	}

	pools, err := dscreen.BuildPools(s.provider, req.Template)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Sites:     req.Template.Names(),
		Tolerance: req.EvaluatesTolerance(),
		Score:     req.Score,
		StartedAt: start,
	}
	log := s.logger.With(logging.String("run_id", res.RunID))
	log.Info("screening started",
		logging.Strings("sites", res.Sites),
		logging.Int("workers", req.Workers),
		logging.Bool("species_unique", req.SpeciesUnique))

	records, err := s.screen(ctx, req, pools, res)
	if err != nil {
		return nil, s.abort(log, start, err)
	}

	unique := dscreen.Deduplicate(records, req.SpeciesUnique)
	res.Counts.Unique = len(unique)

	cands, err := s.evaluate(ctx, req, unique, res)
	if err != nil {
		return nil, s.abort(log, start, err)
	}
	res.Counts.Stable = len(cands)

	rank := req.Rank
	if rank == "" {
		rank = RankSustainability
	}
	Rank(cands, rank, req.Band)
	res.Candidates = cands
	res.Duration = s.now().Sub(start)

	s.recordCounts(res)
	log.Info("screening finished",
		logging.Int("generated", res.Counts.Generated),
		logging.Int("charge_neutral", res.Counts.ChargeNeutral),
		logging.Int("electronegativity_passed", res.Counts.ElectronegativityPassed),
		logging.Int("unique", res.Counts.Unique),
		logging.Int("stable", res.Counts.Stable),
		logging.Int("failures", len(res.Failures)),
		logging.Duration("duration", res.Duration))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res); err != nil {
			s.sinkFailed(log, res, "cache", err)
		}
	}
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, res); err != nil {
			s.sinkFailed(log, res, sink.Name(), err)
		}
	}
	return res, nil
}

func (s *serviceImpl) lookupCache(ctx context.Context, key string) *Result {
	if s.cache == nil {
		return nil
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("result cache lookup failed", logging.Err(err))
		s.metrics.RecordSinkError("cache")
		return nil
	}
	s.metrics.RecordCacheLookup(ok)
	if !ok || cached == nil {
		return nil
	}
	cached.Cached = true
	s.logger.Debug("result cache hit", logging.String("run_id", cached.RunID))
	return cached
}

// screen runs the per-tuple pipeline over the lazy generator and gathers
// records in generator order.
func (s *serviceImpl) screen(ctx context.Context, req *Request, pools [][]*element.Element, res *Result) ([]dscreen.Record, error) {
	gen := dscreen.NewGenerator(pools)
	var symbols [][]string
	src := func() ([]*element.Element, bool) {
		if !gen.Next() {
			return nil, false
		}
		t := gen.Tuple()
		symbols = append(symbols, dscreen.Symbols(t))
		return t, true
	}
	opts := dscreen.Options{Constraint: req.Template.Constraint, Threshold: req.Threshold}
	fn := func(ctx context.Context, _ int, tuple []*element.Element) (dscreen.Outcome, error) {
		out, err := dscreen.ScreenTuple(tuple, opts)
		if err != nil {
			return out, err
		}
		// A tuple that outlived its deadline is reported, not kept.
		return out, ctx.Err()
	}

	out, err := batch.Map[[]*element.Element, dscreen.Outcome](ctx, src, fn, batch.Options{
		Workers:     req.Workers,
		ItemTimeout: req.ItemTimeout,
		Observer:    s.metrics.WorkerObserver(PhaseScreen),
	})
	if err != nil {
		return nil, err
	}

	res.Counts.Generated = len(out.Items)
	var records []dscreen.Record
	for _, item := range out.Items {
		if item.Status != batch.ItemStatusSuccess {
			res.Failures = append(res.Failures, Failure{
				Index:   item.Index,
				Phase:   PhaseScreen,
				Symbols: symbols[item.Index],
				Error:   errorText(item.Error),
			})
			continue
		}
		res.Counts.ChargeNeutral += item.Result.ChargeNeutral
		res.Counts.ElectronegativityPassed += item.Result.ElectronegativityPassed
		records = append(records, item.Result.Records...)
	}
	return records, nil
}

// evaluate scores and filters unique records.  The input order is kept.
func (s *serviceImpl) evaluate(ctx context.Context, req *Request, records []dscreen.Record, res *Result) ([]Candidate, error) {
	coords := req.Template.Coordinations()
	withTolerance := req.EvaluatesTolerance()
	fn := func(ctx context.Context, _ int, r dscreen.Record) (Candidate, error) {
		c := Candidate{
			Record:     r,
			Formula:    sustainability.FromRecord(r.Symbols, r.Ratio).String(),
			SiteLabels: r.SiteLabels(req.SpeciesUnique),
		}
		if withTolerance {
			tr := tolerance.Evaluate(s.provider, r.Species(coords))
			c.Tolerance = &tr
		}
		if req.Score {
			score, err := sustainability.Score(s.provider, sustainability.FromRecord(r.Symbols, r.Ratio))
			if err != nil {
				return c, err
			}
			c.Sustainability = &score
		}
		return c, ctx.Err()
	}

	out, err := batch.MapSlice[dscreen.Record, Candidate](ctx, records, fn, batch.Options{
		Workers:     req.Workers,
		ItemTimeout: req.ItemTimeout,
		Observer:    s.metrics.WorkerObserver(PhaseEvaluate),
	})
	if err != nil {
		return nil, err
	}

	cands := make([]Candidate, 0, len(out.Items))
	for _, item := range out.Items {
		if item.Status != batch.ItemStatusSuccess {
			res.Failures = append(res.Failures, Failure{
				Index:   item.Index,
				Phase:   PhaseEvaluate,
				Symbols: records[item.Index].Symbols,
				Error:   errorText(item.Error),
			})
			continue
		}
		c := item.Result
		if c.Tolerance != nil && c.Tolerance.Status == tolerance.StatusZeroDenominator {
			s.logger.Warn("tolerance factor has a non-positive denominator",
				logging.String("formula", c.Formula),
				logging.Strings("species", c.SiteLabels))
		}
		if withTolerance && !req.Band.Contains(*c.Tolerance) {
			continue
		}
		cands = append(cands, c)
	}
	return cands, nil
}

func (s *serviceImpl) recordCounts(res *Result) {
	s.metrics.RecordStage(prometheus.StageGenerated, res.Counts.Generated)
	s.metrics.RecordStage(prometheus.StageChargeNeutral, res.Counts.ChargeNeutral)
	s.metrics.RecordStage(prometheus.StageElectronegativityPassed, res.Counts.ElectronegativityPassed)
	s.metrics.RecordStage(prometheus.StageUnique, res.Counts.Unique)
	s.metrics.RecordStage(prometheus.StageStable, res.Counts.Stable)
	screenFailures, evalFailures := 0, 0
	for _, f := range res.Failures {
		if f.Phase == PhaseScreen {
			screenFailures++
		} else {
			evalFailures++
		}
	}
	s.metrics.RecordFailures(PhaseScreen, screenFailures)
	s.metrics.RecordFailures(PhaseEvaluate, evalFailures)
	s.metrics.RecordRun("success", res.Duration)
}

func (s *serviceImpl) abort(log logging.Logger, start time.Time, err error) error {
	status := "error"
	if errors.IsCode(err, errors.ErrCodeCancelled) {
		status = "cancelled"
	}
	s.metrics.RecordRun(status, s.now().Sub(start))
	log.Warn("screening aborted", logging.String("status", status), logging.Err(err))
	return err
}

func (s *serviceImpl) sinkFailed(log logging.Logger, res *Result, sink string, err error) {
	log.Warn("sink write failed", logging.String("sink", sink), logging.Err(err))
	s.metrics.RecordSinkError(sink)
	res.SinkErrors = append(res.SinkErrors, sink+": "+err.Error())
}

func (s *serviceImpl) Tolerance(_ context.Context, input *ToleranceInput) (*ToleranceOutput, error) {
	if input == nil || len(input.Species) == 0 {
		return nil, errors.InvalidParam("species are required")
	}
	coords := input.Coordinations
	if len(coords) == 0 {
		coords = dscreen.Garnet().Coordinations()
	}
	if len(coords) != len(input.Species) {
		return nil, errors.InvalidParam("one coordination per species is required")
	}
	species := make([]element.Species, len(input.Species))
	for i, label := range input.Species {
		sp, err := element.ParseSpeciesValue(label)
		if err != nil {
			return nil, err
		}
		if _, err := s.provider.Lookup(sp.Symbol); err != nil {
			return nil, err
		}
		sp.Coordination = coords[i]
		species[i] = sp
	}
	r := tolerance.Evaluate(s.provider, species)
	return &ToleranceOutput{
		Species:    species,
		Result:     r,
		Band:       s.band,
		WithinBand: s.band.Contains(r),
	}, nil
}

func (s *serviceImpl) Score(_ context.Context, formula string) (*ScoreOutput, error) {
	f, err := sustainability.Parse(formula)
	if err != nil {
		return nil, err
	}
	score, err := sustainability.Score(s.provider, f)
	if err != nil {
		return nil, err
	}
	fractions, err := sustainability.MassFractions(s.provider, f)
	if err != nil {
		return nil, err
	}
	out := &ScoreOutput{Formula: f.String(), Score: score, MassFractions: make(map[string]float64, len(f))}
	for i, c := range f {
		out.MassFractions[c.Symbol] = fractions[i]
	}
	return out, nil
}

func (s *serviceImpl) Element(_ context.Context, symbol string) (*element.Element, error) {
	return s.provider.Lookup(symbol)
}

func (s *serviceImpl) Elements(_ context.Context) ([]*element.Element, error) {
	symbols := s.provider.Symbols()
	out := make([]*element.Element, 0, len(symbols))
	for _, sym := range symbols {
		e, err := s.provider.Lookup(sym)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

//Personal.AI order the ending
