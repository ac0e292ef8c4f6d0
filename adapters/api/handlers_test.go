package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fhtsuite/adapters/sqlstore"
	"fhtsuite/app"
	"fhtsuite/domain/fht"
	"fhtsuite/internal/testkit"
)

func newTestServer(t *testing.T, withDB bool) *Server {
	t.Helper()

	var repo app.RunRepository
	if withDB {
		db, err := sqlstore.Open(context.Background(), "sqlite3", ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		repo = sqlstore.NewRunRepository(db)
	}

	svc := app.NewSuiteService(fht.MustNewEngine(fht.DefaultParameters()), testkit.NewPatternGenerator(), repo, t.TempDir())
	return NewServer(svc, gin.TestMode)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func oneToTen() []float64 {
	return []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestTransform(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/transform", TransformRequest{Data: oneToTen()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TransformResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Transformed, 10)
	assert.InDelta(t, 1.0, resp.Transformed[0], 1e-9)
	assert.InDelta(t, 1.8942065075, resp.Transformed[1], 1e-8)
	assert.InDelta(t, fht.Phi, resp.Parameters.Alpha, 1e-12)
}

func TestTransform_Amplification(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/transform", `{"data":[1,2],"amplification":2,"parameters":{"beta":3}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TransformResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Transformed, 2)
	assert.InDelta(t, 3.0, resp.Transformed[0], 1e-9)
	assert.InDelta(t, 3+2*0.8942065075, resp.Transformed[1], 1e-8)
	assert.Equal(t, 3.0, resp.Parameters.Beta)
	assert.InDelta(t, fht.Phi, resp.Parameters.Alpha, 1e-12)
}

func TestTransform_PartialParametersKeepDefaults(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/transform", `{"data":[1,2],"parameters":{"beta":5}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TransformResponse
	decode(t, rec, &resp)
	assert.InDelta(t, fht.Phi, resp.Parameters.Alpha, 1e-12)
	assert.Equal(t, 5.0, resp.Parameters.Beta)
	assert.Equal(t, fht.DefaultEpsilon, resp.Parameters.Epsilon)
	assert.InDelta(t, 5.0, resp.Transformed[0], 1e-9)
}

func TestTransform_InvalidParameters(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/transform", `{"data":[1,2],"parameters":{"epsilon":0}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "CONFIG_INVALID", resp.Code)
}

func TestTransform_MalformedBody(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodPost, "/api/transform", `{"data":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "INVALID_INPUT", resp.Code)
}

func TestScore(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodPost, "/api/score", ScoreRequest{Data: oneToTen()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ScoreResponse
	decode(t, rec, &resp)
	assert.InDelta(t, 0.9864219687, resp.Metrics.ConsciousnessScore, 1e-6)
	assert.InDelta(t, 0.9913343347, resp.Metrics.Correlation, 1e-6)
}

func TestValidate_DefaultPath(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodPost, "/api/validate", `{"data":[1,2,3,4,5,6,7,8,9,10]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc struct {
		Sequence    int `json:"sequence"`
		DatasetSize int `json:"dataset_size"`
		Tests       struct {
			KSStatistic float64 `json:"ks_statistic"`
		} `json:"statistical_tests"`
	}
	decode(t, rec, &doc)
	assert.Equal(t, 1, doc.Sequence)
	assert.Equal(t, 10, doc.DatasetSize)
	assert.InDelta(t, 0.3, doc.Tests.KSStatistic, 1e-9)
}

func TestValidate_CustomPath(t *testing.T) {
	body := `{"meta":{"series":{"values":[3,1,4,1,5,9,2,6]}}}`
	rec := do(t, newTestServer(t, false), http.MethodPost, "/api/validate?path=meta.series.values", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"dataset_size": 8`)
}

func TestValidate_Errors(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"invalid json", "/api/validate", `{"data":[1,2`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing path", "/api/validate?path=nope", `{"data":[1,2]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"not numeric", "/api/validate", `{"data":[1,"x"]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"too short", "/api/validate", `{"data":[1]}`, http.StatusUnprocessableEntity, "INSUFFICIENT_DATA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			decode(t, rec, &resp)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestSuite_PersistAndFetch(t *testing.T) {
	s := newTestServer(t, true)

	rec := do(t, s, http.MethodPost, "/api/suite", map[string]interface{}{
		"patterns": []string{"fibonacci", "random"},
		"sizes":    []int{32, 16},
		"workers":  2,
		"persist":  true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Result struct {
			RunID   string `json:"run_id"`
			Seed    int64  `json:"seed"`
			Sizes   []int  `json:"sizes"`
			Summary struct {
				TotalTests int `json:"total_tests"`
			} `json:"summary"`
		} `json:"result"`
		Report  string `json:"report"`
		Warning string `json:"warning"`
	}
	decode(t, rec, &resp)
	assert.Empty(t, resp.Warning)
	assert.Equal(t, DefaultSeed, resp.Result.Seed)
	assert.Equal(t, []int{16, 32}, resp.Result.Sizes)
	assert.Equal(t, 4, resp.Result.Summary.TotalTests)
	assert.Contains(t, resp.Report, "EXECUTIVE SUMMARY")
	require.NotEmpty(t, resp.Result.RunID)

	rec = do(t, s, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list struct {
		Runs []struct {
			RunID       string `json:"run_id"`
			RecordCount int    `json:"record_count"`
		} `json:"runs"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, resp.Result.RunID, list.Runs[0].RunID)
	assert.Equal(t, 4, list.Runs[0].RecordCount)

	rec = do(t, s, http.MethodGet, "/api/runs/"+resp.Result.RunID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), resp.Result.RunID)
}

func TestSuite_PersistWithoutDatabaseWarns(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodPost, "/api/suite", `{"patterns":["linear"],"sizes":[8],"seed":7,"persist":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Result struct {
			Seed int64 `json:"seed"`
		} `json:"result"`
		Warning string `json:"warning"`
	}
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Warning)
	assert.Equal(t, int64(7), resp.Result.Seed)
}

func TestSuite_InvalidSizes(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodPost, "/api/suite", `{"patterns":["linear"],"sizes":[0]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestRuns_Errors(t *testing.T) {
	s := newTestServer(t, true)

	rec := do(t, s, http.MethodGet, "/api/runs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/runs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, newTestServer(t, false), http.MethodGet, "/api/runs", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
