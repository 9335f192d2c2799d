// Package repositories persists screening runs and their candidates in
// PostgreSQL.  The run repository doubles as a result sink.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/infrastructure/database/postgres"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// RunSummary is a stored run without its candidates.
type RunSummary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Sites     []string
	Tolerance bool
	Score     bool
	Counts    screening.Counts
	Failures  int
}

// StoredCandidate is one persisted candidate row.
type StoredCandidate struct {
	Position        int
	Formula         string
	Symbols         []string
	OxidationStates []int64
	Ratio           []int64
	SiteLabels      []string
	ToleranceFactor sql.NullFloat64
	ToleranceStatus sql.NullString
	Sustainability  sql.NullFloat64
	ParetoFront     int
}

// RunRepository stores runs.
type RunRepository struct {
	conn *postgres.Connection
	log  logging.Logger
}

var _ screening.Sink = (*RunRepository)(nil)

// NewRunRepository creates a repository over conn.
func NewRunRepository(conn *postgres.Connection, log logging.Logger) *RunRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RunRepository{conn: conn, log: log}
}

// Name identifies the sink in logs and metrics.
func (r *RunRepository) Name() string { return "postgres" }

// Publish stores res and its candidates in one transaction.
func (r *RunRepository) Publish(ctx context.Context, res *screening.Result) error {
	return r.Save(ctx, res)
}

const insertRun = `
	INSERT INTO screening_runs (
		run_id, started_at, duration_ms, sites, tolerance_evaluated, score_evaluated,
		generated, charge_neutral, electronegativity_passed, unique_count, stable, failures
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

const insertCandidate = `
	INSERT INTO screening_candidates (
		run_id, position, formula, symbols, oxidation_states, ratio, site_labels,
		tolerance_factor, tolerance_status, sustainability_score, pareto_front
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

// Save inserts the run row and one row per candidate.
func (r *RunRepository) Save(ctx context.Context, res *screening.Result) error {
	tx, err := r.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, insertRun,
		res.RunID, res.StartedAt, res.Duration.Milliseconds(), pq.Array(res.Sites),
		res.Tolerance, res.Score,
		res.Counts.Generated, res.Counts.ChargeNeutral, res.Counts.ElectronegativityPassed,
		res.Counts.Unique, res.Counts.Stable, len(res.Failures),
	)
	if err != nil {
		r.log.Error("insert run failed", logging.String("run_id", res.RunID), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert run")
	}

	for i, c := range res.Candidates {
		var tau sql.NullFloat64
		var status sql.NullString
		if c.Tolerance != nil {
			status = sql.NullString{String: c.Tolerance.Status.String(), Valid: true}
			if c.Tolerance.Defined() {
				tau = sql.NullFloat64{Float64: c.Tolerance.Value, Valid: true}
			}
		}
		var score sql.NullFloat64
		if c.Sustainability != nil {
			score = sql.NullFloat64{Float64: *c.Sustainability, Valid: true}
		}
		_, err = tx.ExecContext(ctx, insertCandidate,
			res.RunID, i, c.Formula, pq.Array(c.Symbols),
			pq.Array(toInt64(c.OxidationStates)), pq.Array(toInt64(c.Ratio)), pq.Array(c.SiteLabels),
			tau, status, score, c.ParetoFront,
		)
		if err != nil {
			r.log.Error("insert candidate failed",
				logging.String("run_id", res.RunID), logging.Int("position", i), logging.Err(err))
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert candidate")
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit run")
	}
	r.log.Debug("run stored", logging.String("run_id", res.RunID), logging.Int("candidates", len(res.Candidates)))
	return nil
}

// FindRun loads a run summary.
func (r *RunRepository) FindRun(ctx context.Context, runID string) (*RunSummary, error) {
	row := r.conn.DB().QueryRowContext(ctx, `
		SELECT run_id, started_at, duration_ms, sites, tolerance_evaluated, score_evaluated,
		       generated, charge_neutral, electronegativity_passed, unique_count, stable, failures
		FROM screening_runs WHERE run_id = $1`, runID)

	var s RunSummary
	var ms int64
	err := row.Scan(&s.RunID, &s.StartedAt, &ms, pq.Array(&s.Sites), &s.Tolerance, &s.Score,
		&s.Counts.Generated, &s.Counts.ChargeNeutral, &s.Counts.ElectronegativityPassed,
		&s.Counts.Unique, &s.Counts.Stable, &s.Failures)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeRunNotFound, "screening run not found").WithDetail(runID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load run")
	}
	s.Duration = time.Duration(ms) * time.Millisecond
	return &s, nil
}

// ListCandidates returns a run's candidates in ranked order.
func (r *RunRepository) ListCandidates(ctx context.Context, runID string, limit int) ([]StoredCandidate, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.conn.DB().QueryContext(ctx, `
		SELECT position, formula, symbols, oxidation_states, ratio, site_labels,
		       tolerance_factor, tolerance_status, sustainability_score, pareto_front
		FROM screening_candidates WHERE run_id = $1 ORDER BY position LIMIT $2`, runID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query candidates")
	}
	defer rows.Close()

	var out []StoredCandidate
	for rows.Next() {
		var c StoredCandidate
		if err := rows.Scan(&c.Position, &c.Formula, pq.Array(&c.Symbols), pq.Array(&c.OxidationStates),
			pq.Array(&c.Ratio), pq.Array(&c.SiteLabels), &c.ToleranceFactor, &c.ToleranceStatus,
			&c.Sustainability, &c.ParetoFront); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan candidate")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate candidates")
	}
	return out, nil
}

// DeleteRun removes a run and, by cascade, its candidates.
func (r *RunRepository) DeleteRun(ctx context.Context, runID string) error {
	res, err := r.conn.DB().ExecContext(ctx, `DELETE FROM screening_runs WHERE run_id = $1`, runID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete run")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeRunNotFound, "screening run not found").WithDetail(runID)
	}
	return nil
}

func toInt64(v []int) []int64 {
	out := make([]int64, len(v))
	for i, n := range v {
		out[i] = int64(n)
	}
	return out
}

//Personal.AI order the ending
