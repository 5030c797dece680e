package portal

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/spigell/edumatch/internal/eligibility"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(context.Background(), nil, server.URL+"/", "secret")
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, payload any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestListOfferingsFollowsPages(t *testing.T) {
	var (
		mu    sync.Mutex
		pages []string
	)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/courses/documents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.URL.Query().Get("status"); got != "open" {
			t.Errorf("expected default status open, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "science" {
			t.Errorf("expected search text, got %q", got)
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		mu.Lock()
		pages = append(pages, strconv.Itoa(page))
		mu.Unlock()

		writeJSON(t, w, http.StatusOK, map[string]any{
			"items":    []map[string]any{{"id": "c" + strconv.Itoa(page), "title": "Course"}},
			"pages":    2,
			"page":     page,
			"per_page": 1,
		})
	}))

	offerings, err := client.ListOfferings(KindCourse, &SearchParams{Text: "science"})
	if err != nil {
		t.Fatalf("ListOfferings returned error: %v", err)
	}

	if got := offerings.IDs(); len(got) != 2 || got[0] != "c0" || got[1] != "c1" {
		t.Fatalf("unexpected ids %v", got)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 requests, got %v", pages)
	}
	for _, o := range offerings.Items {
		if o.Kind != KindCourse {
			t.Fatalf("expected course kind, got %q", o.Kind)
		}
	}
}

func TestGetItemsDecodesGzip(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusOK)

		gz := gzip.NewWriter(w)
		defer gz.Close()
		_, _ = io.WriteString(gz, `{"items":[{"id":"j1"}],"pages":1,"page":0}`)
	}))

	offerings, err := client.ListOfferings(KindJob, nil)
	if err != nil {
		t.Fatalf("ListOfferings returned error: %v", err)
	}
	if offerings.Len() != 1 || offerings.Items[0].ID != "j1" {
		t.Fatalf("unexpected offerings %v", offerings.IDs())
	}
}

func TestListOfferingsReturnsStatusError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.ListOfferings(KindCourse, nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status code %d", statusErr.Code)
	}
}

func TestGetProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collections/students/documents/s1":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"name":         "Ada",
				"overallGrade": "B",
			})
		default:
			http.NotFound(w, r)
		}
	}))

	profile, err := client.GetProfile("s1")
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if profile.ID != "s1" || profile.Name != "Ada" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.Raw["overallGrade"] != "B" {
		t.Fatalf("expected raw document to be kept, got %v", profile.Raw)
	}

	_, err = client.GetProfile("missing")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestApplyRefusesFailedVerdict(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	offering := &Offering{ID: "c1", Verdict: &eligibility.Verdict{Qualified: false}}

	_, err := client.Apply("s1", offering, "")
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("store should not be called for a failed verdict, got %d calls", calls)
	}
}

func TestApplySubmitsPendingApplication(t *testing.T) {
	var received Application
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/collections/applications/documents" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	offering := &Offering{ID: "c1", Kind: KindCourse, Verdict: &eligibility.Verdict{Qualified: true}}

	application, err := client.Apply("s1", offering, "Hello")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if application.ID == "" {
		t.Fatalf("expected generated application id")
	}
	if received.ID != application.ID || received.Status != StatusPending {
		t.Fatalf("unexpected stored application %+v", received)
	}
	if received.CandidateID != "s1" || received.OfferingID != "c1" || received.OfferingKind != KindCourse {
		t.Fatalf("unexpected stored application %+v", received)
	}
}

func TestApplyUncheckedOfferingIsAllowed(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if _, err := client.Apply("s1", &Offering{ID: "c1"}, ""); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
}

func TestApplyConflict(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	_, err := client.Apply("s1", &Offering{ID: "c1"}, "")
	if !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
}

func TestGetApplicationsSkipsWithdrawn(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("candidateId"); got != "s1" {
			t.Errorf("unexpected candidate filter %q", got)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": "a1", "candidateId": "s1", "offeringId": "c1", "status": "pending"},
				{"id": "a2", "candidateId": "s1", "offeringId": "c2", "status": "withdrawn"},
				{"id": "a3", "candidateId": "s1", "offeringId": "j1", "status": "rejected"},
			},
			"pages": 1,
		})
	}))

	applications, err := client.GetApplications("s1")
	if err != nil {
		t.Fatalf("GetApplications returned error: %v", err)
	}

	got := applications.OfferingIDs()
	if len(got) != 2 || got[0] != "c1" || got[1] != "j1" {
		t.Fatalf("unexpected offering ids %v", got)
	}
}

func TestBuildParams(t *testing.T) {
	q := buildParams(&SearchParams{
		Text:      "data",
		Provider:  "inst1",
		Locations: []string{"Leeds", "", "York"},
		Status:    "open",
		PerPage:   "50",
	})

	if q.Get("q") != "data" || q.Get("providerId") != "inst1" || q.Get("status") != "open" || q.Get("per_page") != "50" {
		t.Fatalf("unexpected params %v", q)
	}
	if locations := q["location"]; len(locations) != 2 {
		t.Fatalf("expected blank location to be skipped, got %v", locations)
	}
	if q.Has("page") {
		t.Fatalf("zero page should not be sent")
	}
}
