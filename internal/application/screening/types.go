// Package screening provides the application-level screening service.  It
// drives the domain pipeline through the parallel worker pool, applies the
// tolerance band and sustainability scorer, ranks the survivors and hands the
// result to the configured cache and sinks.
package screening

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/turtacn/garnet-screening/internal/config"
	dscreen "github.com/turtacn/garnet-screening/internal/domain/screening"
	"github.com/turtacn/garnet-screening/internal/domain/tolerance"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// Ranking modes.
const (
	RankSustainability = "sustainability"
	RankTolerance      = "tolerance"
	RankPareto         = "pareto"
	RankNone           = "none"
)

// Failure phases.
const (
	PhaseScreen   = "screen"
	PhaseEvaluate = "evaluate"
)

// Request is one screening run.
type Request struct {
	Template      dscreen.Template `json:"template"`
	SpeciesUnique bool             `json:"species_unique"`
	Band          tolerance.Band   `json:"tolerance_band"`
	Workers       int              `json:"-"`
	Threshold     float64          `json:"electronegativity_threshold"`
	Score         bool             `json:"score"`
	Tolerance     bool             `json:"tolerance"`
	Rank          string           `json:"rank"`
	Timeout       time.Duration    `json:"-"`
	// ItemTimeout bounds the work on one composition; zero disables it.
	ItemTimeout   time.Duration    `json:"-"`
}

// RequestFromConfig maps the screening section of the configuration onto a
// Request.
func RequestFromConfig(cfg config.ScreeningConfig) *Request {
	sites := make([]dscreen.Site, len(cfg.Sites))
	for i, s := range cfg.Sites {
		sites[i] = dscreen.Site{
			Name:         s.Name,
			Coordination: s.Coordination,
			Elements:     append([]string(nil), s.Elements...),
		}
	}
	constraint := make(dscreen.Constraint, len(cfg.StoichiometryConstraints))
	for i, c := range cfg.StoichiometryConstraints {
		constraint[i] = append([]int(nil), c...)
	}
	return &Request{
		Template:      dscreen.Template{Sites: sites, Constraint: constraint},
		SpeciesUnique: cfg.SpeciesUnique,
		Band: tolerance.Band{
			Enabled: cfg.ToleranceBand.Enabled,
			Low:     cfg.ToleranceBand.Low,
			High:    cfg.ToleranceBand.High,
		},
		Workers:     cfg.WorkerCount,
		Threshold:   cfg.ElectronegativityThreshold,
		Score:       cfg.Score,
		Tolerance:   cfg.Tolerance,
		Rank:        cfg.Rank,
		Timeout:     cfg.Timeout,
		ItemTimeout: cfg.ItemTimeout,
	}
}

// DefaultRequest returns the garnet run with the default band, scoring and
// sustainability ranking.
func DefaultRequest() *Request {
	return &Request{
		Template:      dscreen.Garnet(),
		SpeciesUnique: true,
		Band:          tolerance.DefaultBand(),
		Score:         true,
		Tolerance:     true,
		Rank:          RankSustainability,
	}
}

// Validate checks the request before any work is done.
func (r *Request) Validate() error {
	if r == nil {
		return errors.InvalidParam("request is required")
	}
	if err := r.Template.Validate(); err != nil {
		return err
	}
	if err := r.Band.Validate(); err != nil {
		return err
	}
	if r.Workers < 0 {
		return errors.InvalidParam("workers must be non-negative")
	}
	if r.ItemTimeout < 0 {
		return errors.InvalidParam("item timeout must be non-negative")
	}
	if r.Threshold < 0 {
		return errors.InvalidParam("electronegativity threshold must be non-negative")
	}
	switch r.Rank {
	case "", RankSustainability, RankTolerance, RankPareto, RankNone:
	default:
		return errors.InvalidParam("unknown rank mode").WithDetail(r.Rank)
	}
	return nil
}

// EvaluatesTolerance reports whether tolerance factors are computed.  An
// enabled band needs them even when Tolerance is off.
func (r *Request) EvaluatesTolerance() bool {
	return r.Tolerance || r.Band.Enabled
}

// CacheKey is a stable digest of every field that affects the result.
// Worker count and timeout are excluded.
func (r *Request) CacheKey() string {
	b, _ := json.Marshal(r)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Counts reports how many compositions survive each stage.  Generated counts
// candidate tuples; later stages count (assignment, ratio) compositions.
type Counts struct {
	Generated               int `json:"generated"`
	ChargeNeutral           int `json:"charge_neutral"`
	ElectronegativityPassed int `json:"electronegativity_passed"`
	Unique                  int `json:"unique"`
	Stable                  int `json:"stable"`
}

// Failure is a candidate whose processing failed.  The run carries on without
// it.
type Failure struct {
	Index   int      `json:"index"`
	Phase   string   `json:"phase"`
	Symbols []string `json:"symbols"`
	Error   string   `json:"error"`
}

// Candidate is one surviving composition with its evaluations.  Tolerance and
// Sustainability are nil when the evaluator did not run.
type Candidate struct {
	dscreen.Record
	Formula        string            `json:"formula"`
	SiteLabels     []string          `json:"site_labels"`
	Tolerance      *tolerance.Result `json:"tolerance,omitempty"`
	Sustainability *float64          `json:"sustainability,omitempty"`
	ParetoFront    int               `json:"pareto_front,omitempty"`
}

// Result is the outcome of a run.
type Result struct {
	RunID      string        `json:"run_id"`
	Sites      []string      `json:"sites"`
	Tolerance  bool          `json:"tolerance"`
	Score      bool          `json:"score"`
	Counts     Counts        `json:"counts"`
	Candidates []Candidate   `json:"candidates"`
	Failures   []Failure     `json:"failures,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Cached     bool          `json:"cached"`
	SinkErrors []string      `json:"sink_errors,omitempty"`
}

//Personal.AI order the ending
