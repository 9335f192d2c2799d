package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/testutil"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newScreeningEngine(t *testing.T) *gin.Engine {
	t.Helper()
	svc := screening.NewService(testutil.ElementTable(t), testutil.NewMockLogger())
	base := screening.DefaultRequest()
	base.Workers = 2

	r := gin.New()
	NewScreeningHandler(svc, base, nil).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScreen_DefaultRunJSON(t *testing.T) {
	r := newScreeningEngine(t)

	w := send(r, http.MethodPost, "/api/v1/screen", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Run-ID"))

	var res screening.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 20, res.Counts.Generated)
	assert.Equal(t, 4, res.Counts.Stable)
	require.Len(t, res.Candidates, 4)
	assert.Equal(t, "Nb3Te2Li3O12", res.Candidates[0].Formula)
}

func TestScreen_OverridesAndCSV(t *testing.T) {
	r := newScreeningEngine(t)

	body := `{"tolerance_band":{"enabled":false},"tolerance":false,"rank":"sustainability"}`
	w := send(r, http.MethodPost, "/api/v1/screen?format=csv", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Equal(t, "formula,A,B,C,D,sustainability_score", lines[0])
	assert.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[1], "Nb3Te2Li3O12,Nb3+,Te6+,Li1+,O2-,"))
}

func TestScreen_BadRequests(t *testing.T) {
	r := newScreeningEngine(t)

	cases := []struct {
		name, path, body string
		status           int
	}{
		{"format", "/api/v1/screen?format=xml", "", http.StatusBadRequest},
		{"json", "/api/v1/screen", "{", http.StatusBadRequest},
		{"rank", "/api/v1/screen", `{"rank":"alphabetical"}`, http.StatusBadRequest},
		{"timeout", "/api/v1/screen", `{"timeout":"soon"}`, http.StatusBadRequest},
		{"band", "/api/v1/screen", `{"tolerance_band":{"enabled":true,"low":1.3,"high":0.7}}`, http.StatusBadRequest},
		{"workers above pool", "/api/v1/screen", `{"workers":64}`, http.StatusBadRequest},
		{"negative workers", "/api/v1/screen", `{"workers":-1}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := send(r, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())

			var er ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &er))
			assert.NotEmpty(t, er.Code)
			assert.NotEmpty(t, er.Message)
		})
	}
}

func TestScreenRequest_ApplyKeepsBase(t *testing.T) {
	base := screening.DefaultRequest()
	base.Workers = 4
	unique := false
	req, err := (&ScreenRequest{SpeciesUnique: &unique, Workers: 3, Timeout: "2s"}).Apply(base)
	require.NoError(t, err)

	assert.False(t, req.SpeciesUnique)
	assert.Equal(t, 3, req.Workers)
	assert.Equal(t, "2s", req.Timeout.String())
	assert.True(t, base.SpeciesUnique)
	assert.Equal(t, base.Band, req.Band)
}

func TestScreenRequest_ApplyCapsWorkers(t *testing.T) {
	base := screening.DefaultRequest()
	base.Workers = 2

	req, err := (&ScreenRequest{Workers: 2}).Apply(base)
	require.NoError(t, err)
	assert.Equal(t, 2, req.Workers)

	_, err = (&ScreenRequest{Workers: 3}).Apply(base)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	assert.Contains(t, err.Error(), "between 1 and 2")

	base.Workers = 0
	_, err = (&ScreenRequest{Workers: runtime.NumCPU() + 1}).Apply(base)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestTolerance(t *testing.T) {
	r := newScreeningEngine(t)

	w := send(r, http.MethodPost, "/api/v1/tolerance", `{"species":["Y3+","Te6+","Li1+","O2-"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out screening.ToleranceOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.InDelta(t, 0.836, out.Result.Value, 1e-3)
	assert.True(t, out.WithinBand)
	assert.Equal(t, "8", out.Species[0].Coordination)

	w = send(r, http.MethodPost, "/api/v1/tolerance", `{"species":["Y3"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScore(t *testing.T) {
	r := newScreeningEngine(t)

	w := send(r, http.MethodPost, "/api/v1/score", `{"formula":"Y3Te2Li3O12"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out screening.ScoreOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.InDelta(t, 4777.7, out.Score, 0.5)
	assert.Len(t, out.MassFractions, 4)

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/api/v1/score", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPost, "/api/v1/score", `{"formula":"Xx2O3"}`).Code)
}

func TestElements(t *testing.T) {
	r := newScreeningEngine(t)

	w := send(r, http.MethodGet, "/api/v1/elements", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 9, list.Total)

	w = send(r, http.MethodGet, "/api/v1/elements/Y", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.Contains(w.Body.Bytes(), []byte(`"electronegativity":1.22`)))

	w = send(r, http.MethodGet, "/api/v1/elements/Xx", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParseSpecies(t *testing.T) {
	r := newScreeningEngine(t)

	w := send(r, http.MethodGet, "/api/v1/species/Fe2+", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"label":"Fe2+","species":{"symbol":"Fe","oxidation_state":2}}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/api/v1/species/Na+", "").Code)
}

func TestSetBase(t *testing.T) {
	svc := screening.NewService(testutil.ElementTable(t), nil)
	logger := testutil.NewMockLogger()
	h := NewScreeningHandler(svc, nil, logger)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))

	base := screening.DefaultRequest()
	base.SpeciesUnique = false
	base.Band.Enabled = false
	h.SetBase(base)
	h.SetBase(nil)
	assert.True(t, logger.HasMessage("info", "Default screening run updated"))

	w := send(r, http.MethodPost, "/api/v1/screen", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res screening.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 5, res.Counts.Unique)
	assert.Len(t, res.Candidates, 5)
}
