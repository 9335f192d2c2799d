package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	pgrepo "github.com/turtacn/garnet-screening/internal/infrastructure/database/postgres/repositories"
	minioclient "github.com/turtacn/garnet-screening/internal/infrastructure/storage/minio"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// RunStore reads persisted runs.
type RunStore interface {
	FindRun(ctx context.Context, runID string) (*pgrepo.RunSummary, error)
	ListCandidates(ctx context.Context, runID string, limit int) ([]pgrepo.StoredCandidate, error)
	DeleteRun(ctx context.Context, runID string) error
}

// ExportLinker hands out download links for stored exports.
type ExportLinker interface {
	PresignedURL(ctx context.Context, runID, name string, expiry time.Duration) (string, error)
	ListRuns(ctx context.Context) ([]string, error)
}

const (
	defaultCandidateLimit = 100
	maxCandidateLimit     = 10000
	exportLinkExpiry      = 15 * time.Minute
)

// RunResponse is a stored run with its leading candidates.
type RunResponse struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	DurationMS int64             `json:"duration_ms"`
	Sites      []string          `json:"sites"`
	Tolerance  bool              `json:"tolerance"`
	Score      bool              `json:"score"`
	Counts     screening.Counts  `json:"counts"`
	Failures   int               `json:"failures"`
	Candidates []StoredCandidate `json:"candidates"`
}

// StoredCandidate is the wire form of a persisted candidate.  Null columns
// are omitted.
type StoredCandidate struct {
	Position        int      `json:"position"`
	Formula         string   `json:"formula"`
	SiteLabels      []string `json:"site_labels"`
	OxidationStates []int64  `json:"oxidation_states"`
	Ratio           []int64  `json:"ratio"`
	ToleranceFactor *float64 `json:"tolerance_factor,omitempty"`
	ToleranceStatus string   `json:"tolerance_status,omitempty"`
	Sustainability  *float64 `json:"sustainability,omitempty"`
	ParetoFront     int      `json:"pareto_front,omitempty"`
}

// RunsHandler serves stored runs and their exports.  Either backend may be
// nil; its routes are then not registered.
type RunsHandler struct {
	runs    RunStore
	exports ExportLinker
}

func NewRunsHandler(runs RunStore, exports ExportLinker) *RunsHandler {
	return &RunsHandler{runs: runs, exports: exports}
}

// RegisterRoutes mounts the handler under g.
func (h *RunsHandler) RegisterRoutes(g *gin.RouterGroup) {
	if h.runs != nil {
		g.GET("/runs/:id", h.GetRun)
		g.DELETE("/runs/:id", h.DeleteRun)
	}
	if h.exports != nil {
		g.GET("/exports", h.ListExports)
		g.GET("/runs/:id/exports/:name", h.DownloadExport)
	}
}

// GetRun handles GET /runs/:id?limit=N.
func (h *RunsHandler) GetRun(c *gin.Context) {
	limit := defaultCandidateLimit
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > maxCandidateLimit {
			writeError(c, errors.InvalidParam("limit must be between 1 and 10000").WithDetail(q))
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	run, err := h.runs.FindRun(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	rows, err := h.runs.ListCandidates(ctx, id, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := RunResponse{
		RunID:      run.RunID,
		StartedAt:  run.StartedAt,
		DurationMS: run.Duration.Milliseconds(),
		Sites:      run.Sites,
		Tolerance:  run.Tolerance,
		Score:      run.Score,
		Counts:     run.Counts,
		Failures:   run.Failures,
		Candidates: make([]StoredCandidate, 0, len(rows)),
	}
	for _, r := range rows {
		sc := StoredCandidate{
			Position:        r.Position,
			Formula:         r.Formula,
			SiteLabels:      r.SiteLabels,
			OxidationStates: r.OxidationStates,
			Ratio:           r.Ratio,
			ParetoFront:     r.ParetoFront,
		}
		if r.ToleranceFactor.Valid {
			v := r.ToleranceFactor.Float64
			sc.ToleranceFactor = &v
		}
		if r.ToleranceStatus.Valid {
			sc.ToleranceStatus = r.ToleranceStatus.String
		}
		if r.Sustainability.Valid {
			v := r.Sustainability.Float64
			sc.Sustainability = &v
		}
		resp.Candidates = append(resp.Candidates, sc)
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteRun handles DELETE /runs/:id.
func (h *RunsHandler) DeleteRun(c *gin.Context) {
	if err := h.runs.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListExports handles GET /exports.
func (h *RunsHandler) ListExports(c *gin.Context) {
	ids, err := h.exports.ListRuns(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": ids, "total": len(ids)})
}

// DownloadExport handles GET /runs/:id/exports/:name by redirecting to a
// presigned object URL.  name is "csv", "json" or a stored object name.
func (h *RunsHandler) DownloadExport(c *gin.Context) {
	var object string
	switch name := c.Param("name"); name {
	case "csv", minioclient.CSVObject:
		object = minioclient.CSVObject
	case "json", minioclient.JSONObject:
		object = minioclient.JSONObject
	default:
		writeError(c, errors.InvalidParam("unknown export").WithDetail(name))
		return
	}
	u, err := h.exports.PresignedURL(c.Request.Context(), c.Param("id"), object, exportLinkExpiry)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, u)
}

//Personal.AI order the ending
