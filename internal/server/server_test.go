package server

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

	"github.com/spigell/edumatch/internal/eligibility"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(nil, 2).Router()
}

func post(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r := setupRouter()

	tests := []struct {
		name           string
		method         string
		expectedStatus int
		expectedBody   string
	}{
		{name: "GET /health returns OK status", method: http.MethodGet, expectedStatus: http.StatusOK, expectedBody: `{"status":"ok"}`},
		{name: "POST /health is not routed", method: http.MethodPost, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, "/health", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	r := setupRouter()

	tests := []struct {
		name          string
		body          string
		wantQualified bool
		wantSatisfied []string
		wantMissing   []string
	}{
		{
			name:          "no requirements",
			body:          `{"requirements": {}, "snapshot": {}}`,
			wantQualified: true,
			wantSatisfied: []string{eligibility.NoRequirements},
			wantMissing:   []string{},
		},
		{
			name:          "points floor missed",
			body:          `{"requirements": {"minPoints": 30}, "snapshot": {"points": 25}}`,
			wantQualified: false,
			wantSatisfied: []string{},
			wantMissing:   []string{"Minimum 30 points required (your points: 25)"},
		},
		{
			name:          "subjects alias",
			body:          `{"requirements": {"minGrade": "C", "subjects": ["Mathematics", "English"]}, "snapshot": {"overallGrade": "B", "subjects": {"Mathematics": "B"}}}`,
			wantQualified: false,
			wantSatisfied: []string{"Minimum grade C met (your grade: B)"},
			wantMissing:   []string{"Missing required subjects: English"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, r, "/v1/evaluate", tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var verdict eligibility.Verdict
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verdict))

			assert.Equal(t, tt.wantQualified, verdict.Qualified)
			assert.Equal(t, tt.wantSatisfied, verdict.Satisfied)
			assert.Equal(t, tt.wantMissing, verdict.Missing)
		})
	}
}

func TestEvaluateEndpointRejectsBadJSON(t *testing.T) {
	w := post(t, setupRouter(), "/v1/evaluate", `{"snapshot": {"points": "many"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

const filterOfferings = `[
	{"id": "c1", "title": "Computer Science", "requirements": {"minGrade": "C"}},
	{"id": "c2", "title": "Medicine", "requirements": {"minGrade": "A"}},
	{"id": "c3", "title": "Open Foundation Year"}
]`

type filterResponse struct {
	Offerings []struct {
		ID      string               `json:"id"`
		Kind    string               `json:"kind"`
		Verdict *eligibility.Verdict `json:"verdict"`
	} `json:"offerings"`
	Count int `json:"count"`
}

func decodeFilter(t *testing.T, w *httptest.ResponseRecorder) filterResponse {
	t.Helper()

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp filterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestFilterEndpointAnnotates(t *testing.T) {
	w := post(t, setupRouter(), "/v1/offerings/filter",
		`{"offerings": `+filterOfferings+`, "snapshot": {"overallGrade": "B"}}`)

	resp := decodeFilter(t, w)
	require.Equal(t, 3, resp.Count)

	qualified := map[string]bool{}
	for _, o := range resp.Offerings {
		require.NotNil(t, o.Verdict, o.ID)
		assert.Equal(t, "course", o.Kind)
		qualified[o.ID] = o.Verdict.Qualified
	}
	assert.Equal(t, map[string]bool{"c1": true, "c2": false, "c3": true}, qualified)
}

func TestFilterEndpointStrictAndSorted(t *testing.T) {
	w := post(t, setupRouter(), "/v1/offerings/filter",
		`{"kind": "courses", "offerings": `+filterOfferings+`, "snapshot": {"overallGrade": "B"}, "query": {"strict": true, "sort": "title", "limit": 5}}`)

	resp := decodeFilter(t, w)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "c1", resp.Offerings[0].ID)
	assert.Equal(t, "c3", resp.Offerings[1].ID)
}

func TestFilterEndpointWithoutSnapshot(t *testing.T) {
	w := post(t, setupRouter(), "/v1/offerings/filter",
		`{"offerings": `+filterOfferings+`, "query": {"strict": true}}`)

	resp := decodeFilter(t, w)
	require.Equal(t, 3, resp.Count)
	for _, o := range resp.Offerings {
		assert.Nil(t, o.Verdict, o.ID)
	}
}

func TestFilterEndpointValidation(t *testing.T) {
	r := setupRouter()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing offerings", body: `{"snapshot": {}}`},
		{name: "unknown kind", body: `{"kind": "internship", "offerings": []}`},
		{name: "unknown sort", body: `{"offerings": [], "query": {"sort": "rating"}}`},
		{name: "negative limit", body: `{"offerings": [], "query": {"limit": -1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, r, "/v1/offerings/filter", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, New(nil, 1).Run(ctx, "127.0.0.1:0"))
}
