// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/doctox25/longevity-evidence-scout/pkg/types"
)

func testClient(ts *httptest.Server) *Client {
	c := NewClient(types.ArchiveConfig{
		BaseID: "appTESTBASE",
		Table:  "Clinical_Evidence",
		APIKey: "pat_test",
	})
	c.http = ts.Client()
	return c
}

func swapBase(ts *httptest.Server) func() {
	orig := airtableAPIBase
	airtableAPIBase = ts.URL
	return func() { airtableAPIBase = orig }
}

func TestCreateEvidence(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]EvidenceFields
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		fmt.Fprint(w, `{"id": "recNEW"}`)
	}))
	defer ts.Close()
	defer swapBase(ts)()

	fields := EvidenceFields{
		EvidenceID:        "LONG_0830120001",
		StudyTitle:        strings.Repeat("t", 600),
		BiomarkersStudied: strings.Repeat("b", 1200),
		Score:             4,
	}
	if err := testClient(ts).CreateEvidence(context.Background(), fields); err != nil {
		t.Fatalf("CreateEvidence: %v", err)
	}

	if gotPath != "/appTESTBASE/Clinical_Evidence" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer pat_test" {
		t.Errorf("auth = %q", gotAuth)
	}
	sent := gotBody["fields"]
	if len(sent.StudyTitle) != 500 {
		t.Errorf("title length = %d, want 500", len(sent.StudyTitle))
	}
	if len(sent.BiomarkersStudied) != 1000 {
		t.Errorf("biomarkers length = %d, want 1000", len(sent.BiomarkersStudied))
	}
}

func TestCreateEvidenceHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"error": {"type": "INVALID_VALUE"}}`)
	}))
	defer ts.Close()
	defer swapBase(ts)()

	err := testClient(ts).CreateEvidence(context.Background(), EvidenceFields{})
	if err == nil || !strings.Contains(err.Error(), "422") {
		t.Errorf("expected HTTP 422 error, got %v", err)
	}
}

func TestExistingTitlesPaginates(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("fields[]") != "study_title" {
			t.Errorf("missing fields[] filter: %v", r.URL.RawQuery)
		}
		switch r.URL.Query().Get("offset") {
		case "":
			fmt.Fprint(w, `{"records": [{"id": "rec1", "fields": {"study_title": "Study One"}}], "offset": "page2"}`)
		case "page2":
			fmt.Fprint(w, `{"records": [{"id": "rec2", "fields": {"study_title": "Study Two"}}, {"id": "rec3", "fields": {}}]}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}))
	defer ts.Close()
	defer swapBase(ts)()

	titles, err := testClient(ts).ExistingTitles(context.Background())
	if err != nil {
		t.Fatalf("ExistingTitles: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(titles) != 2 || titles[0] != "Study One" || titles[1] != "Study Two" {
		t.Errorf("titles = %v", titles)
	}
}

func TestExistingTitlesTableMissing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()
	defer swapBase(ts)()

	titles, err := testClient(ts).ExistingTitles(context.Background())
	if err != nil {
		t.Fatalf("missing table must not be an error, got %v", err)
	}
	if len(titles) != 0 {
		t.Errorf("titles = %v, want empty", titles)
	}
}

func TestExistingTitlesTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()
	defer swapBase(ts)()

	if _, err := testClient(ts).ExistingTitles(context.Background()); err == nil {
		t.Error("HTTP 502 should surface as an error")
	}
}

func TestLoadReferenceTable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/Aging_Conditions") {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"records": [
			{"id": "recA", "fields": {"name": "Inflammaging"}},
			{"id": "recB", "fields": {"name": "Metabolic Aging"}},
			{"id": "recC", "fields": {}}
		]}`)
	}))
	defer ts.Close()
	defer swapBase(ts)()

	var buf bytes.Buffer
	cache := testClient(ts).LoadReferenceTable(context.Background(), "Aging_Conditions", &buf)
	if len(cache) != 2 {
		t.Fatalf("cache size = %d, want 2", len(cache))
	}
	if got := cache.Lookup("chronic inflammaging markers"); got != "recA" {
		t.Errorf("Lookup = %q, want recA", got)
	}
	if got := cache.Lookup("unrelated"); got != "" {
		t.Errorf("Lookup = %q, want empty", got)
	}
}

func TestLoadReferenceTableMissing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()
	defer swapBase(ts)()

	var buf bytes.Buffer
	cache := testClient(ts).LoadReferenceTable(context.Background(), "Aging_Conditions", &buf)
	if len(cache) != 0 {
		t.Errorf("cache = %v, want empty", cache)
	}
	if !strings.Contains(buf.String(), "not found") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestEvidenceID(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)
	if got := EvidenceID(now, 0); got != "LONG_0830140500" {
		t.Errorf("EvidenceID = %q", got)
	}
	if got := EvidenceID(now, 7); got != "LONG_0830140507" {
		t.Errorf("EvidenceID = %q", got)
	}
	if EvidenceID(now, 3) == EvidenceID(now, 4) {
		t.Error("sequence numbers must keep IDs unique within a run")
	}
}

func TestFormatAuthors(t *testing.T) {
	few := []string{"Smith JA", "Jones B"}
	if got := FormatAuthors(few); got != "Smith JA, Jones B" {
		t.Errorf("FormatAuthors = %q", got)
	}

	many := []string{"A", "B", "C", "D", "E", "F", "G"}
	if got := FormatAuthors(many); got != "A, B, C, D, E et al." {
		t.Errorf("FormatAuthors = %q", got)
	}

	if got := FormatAuthors(nil); got != "" {
		t.Errorf("FormatAuthors(nil) = %q", got)
	}
}
