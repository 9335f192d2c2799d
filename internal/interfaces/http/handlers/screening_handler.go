package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/garnet-screening/internal/application/export"
	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/domain/element"
	dscreen "github.com/turtacn/garnet-screening/internal/domain/screening"
	"github.com/turtacn/garnet-screening/internal/domain/tolerance"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// ScreenRequest overrides fields of the server's configured run.  Omitted
// fields keep their configured value.
type ScreenRequest struct {
	Template      *dscreen.Template `json:"template,omitempty"`
	SpeciesUnique *bool             `json:"species_unique,omitempty"`
	Band          *tolerance.Band   `json:"tolerance_band,omitempty"`
	Threshold     *float64          `json:"electronegativity_threshold,omitempty"`
	Score         *bool             `json:"score,omitempty"`
	Tolerance     *bool             `json:"tolerance,omitempty"`
	Rank          string            `json:"rank,omitempty"`
	Workers       int               `json:"workers,omitempty"`
	Timeout       string            `json:"timeout,omitempty"`
}

// Apply returns a copy of base with the overrides of r.
func (r *ScreenRequest) Apply(base *screening.Request) (*screening.Request, error) {
	req := *base
	if r.Template != nil {
		req.Template = *r.Template
	}
	if r.SpeciesUnique != nil {
		req.SpeciesUnique = *r.SpeciesUnique
	}
	if r.Band != nil {
		req.Band = *r.Band
	}
	if r.Threshold != nil {
		req.Threshold = *r.Threshold
	}
	if r.Score != nil {
		req.Score = *r.Score
	}
	if r.Tolerance != nil {
		req.Tolerance = *r.Tolerance
	}
	if r.Rank != "" {
		req.Rank = r.Rank
	}
	if r.Workers != 0 {
		if limit := workerLimit(base); r.Workers < 0 || r.Workers > limit {
			return nil, errors.InvalidParam(fmt.Sprintf("workers must be between 1 and %d", limit)).
				WithDetail(strconv.Itoa(r.Workers))
		}
		req.Workers = r.Workers
	}
	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil || d < 0 {
			return nil, errors.InvalidParam("timeout must be a non-negative duration").WithDetail(r.Timeout)
		}
		req.Timeout = d
	}
	return &req, nil
}

// workerLimit is the largest pool a request may ask for: the configured
// worker count, or the CPU count when none is configured.
func workerLimit(base *screening.Request) int {
	if base.Workers > 0 {
		return base.Workers
	}
	return runtime.NumCPU()
}

// ScoreRequest is the body of POST /score.
type ScoreRequest struct {
	Formula string `json:"formula"`
}

// ScreeningHandler exposes the screening service.
type ScreeningHandler struct {
	service screening.Service
	base    atomic.Pointer[screening.Request]
	logger  logging.Logger
}

// NewScreeningHandler serves runs derived from base.  A nil base uses the
// default garnet run.
func NewScreeningHandler(service screening.Service, base *screening.Request, logger logging.Logger) *ScreeningHandler {
	if base == nil {
		base = screening.DefaultRequest()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := &ScreeningHandler{service: service, logger: logger}
	h.base.Store(base)
	return h
}

// SetBase replaces the run that request bodies override.  In-flight requests
// keep the run they started with.
func (h *ScreeningHandler) SetBase(base *screening.Request) {
	if base == nil {
		return
	}
	h.base.Store(base)
	h.logger.Info("Default screening run updated",
		logging.Int("sites", len(base.Template.Sites)),
		logging.String("rank", base.Rank))
}

// RegisterRoutes mounts the handler under g.
func (h *ScreeningHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/screen", h.Screen)
	g.POST("/tolerance", h.Tolerance)
	g.POST("/score", h.Score)
	g.GET("/elements", h.ListElements)
	g.GET("/elements/:symbol", h.GetElement)
	g.GET("/species/:label", h.ParseSpecies)
}

// Screen handles POST /screen.  The response encoding follows ?format=
// (json, csv or markdown; json by default).
func (h *ScreeningHandler) Screen(c *gin.Context) {
	format := export.FormatJSON
	if q := c.Query("format"); q != "" {
		f, err := export.ParseFormat(q)
		if err != nil {
			writeError(c, err)
			return
		}
		if f == export.FormatTable {
			f = export.FormatMarkdown
		}
		format = f
	}

	var body ScreenRequest
	if err := bindJSON(c, &body); err != nil {
		writeError(c, err)
		return
	}
	req, err := body.Apply(h.base.Load())
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, res, format); err != nil {
		writeError(c, err)
		return
	}
	c.Header("X-Run-ID", res.RunID)
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

// Tolerance handles POST /tolerance.
func (h *ScreeningHandler) Tolerance(c *gin.Context) {
	var in screening.ToleranceInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, err)
		return
	}
	out, err := h.service.Tolerance(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Score handles POST /score.
func (h *ScreeningHandler) Score(c *gin.Context) {
	var in ScoreRequest
	if err := bindJSON(c, &in); err != nil {
		writeError(c, err)
		return
	}
	if in.Formula == "" {
		writeError(c, errors.InvalidParam("formula is required"))
		return
	}
	out, err := h.service.Score(c.Request.Context(), in.Formula)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListElements handles GET /elements.
func (h *ScreeningHandler) ListElements(c *gin.Context) {
	elements, err := h.service.Elements(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"elements": elements, "total": len(elements)})
}

// GetElement handles GET /elements/:symbol.
func (h *ScreeningHandler) GetElement(c *gin.Context) {
	e, err := h.service.Element(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// ParseSpecies handles GET /species/:label, e.g. /species/Fe2+.
func (h *ScreeningHandler) ParseSpecies(c *gin.Context) {
	sp, err := element.ParseSpeciesValue(c.Param("label"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"species": sp, "label": sp.Label()})
}

//Personal.AI order the ending
