// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/doctox25/longevity-evidence-scout/pkg/types"
)

func testClient(ts *httptest.Server) *Client {
	c := NewClient(types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"})
	c.http = ts.Client()
	c.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestSearch(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"esearchresult": {"idlist": ["40000001", "40000002"]}}`)
	}))
	defer ts.Close()

	orig := esearchBase
	esearchBase = ts.URL
	defer func() { esearchBase = orig }()

	ids, err := testClient(ts).Search(context.Background(), "telomere length blood", 25, "2024-06-01")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(ids) != 2 || ids[0] != "40000001" {
		t.Errorf("ids = %v, want [40000001 40000002]", ids)
	}

	for _, want := range []string{
		"human%5BMeSH+Terms%5D",
		"mindate=2024%2F06%2F01",
		"maxdate=2026%2F08%2F30",
		"datetype=pdat",
		"sort=date",
		"retmax=25",
	} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestSearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	orig := esearchBase
	esearchBase = ts.URL
	defer func() { esearchBase = orig }()

	_, err := testClient(ts).Search(context.Background(), "crp", 10, "2024-01-01")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("expected HTTP 502 error, got %v", err)
	}
}

const fetchXML = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <Article>
        <Journal>
          <JournalIssue><PubDate><Year>2025</Year><Month>Mar</Month></PubDate></JournalIssue>
          <Title>Nature Aging</Title>
        </Journal>
        <ArticleTitle>Telomere Length and All-Cause Mortality</ArticleTitle>
        <Abstract>
          <AbstractText>Shorter telomeres predict mortality.</AbstractText>
          <AbstractText>Secondary section text.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author><LastName>Smith</LastName><Initials>JA</Initials></Author>
          <Author><LastName>Jones</LastName><Initials>B</Initials></Author>
          <Author><CollectiveName>Consortium</CollectiveName></Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, fetchXML)
	}))
	defer ts.Close()

	orig := efetchBase
	efetchBase = ts.URL
	defer func() { efetchBase = orig }()

	rec, err := testClient(ts).Fetch(context.Background(), "40000001")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if rec.Title != "Telomere Length and All-Cause Mortality" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Abstract != "Shorter telomeres predict mortality." {
		t.Errorf("Abstract = %q", rec.Abstract)
	}
	if rec.Journal != "Nature Aging" {
		t.Errorf("Journal = %q", rec.Journal)
	}
	if rec.Year != "2025" || rec.Month != "Mar" {
		t.Errorf("Year/Month = %q/%q", rec.Year, rec.Month)
	}
	if len(rec.Authors) != 2 || rec.Authors[0] != "Smith JA" || rec.Authors[1] != "Jones B" {
		t.Errorf("Authors = %v", rec.Authors)
	}
	if rec.URL != "https://pubmed.ncbi.nlm.nih.gov/40000001/" {
		t.Errorf("URL = %q", rec.URL)
	}
}

func TestFetchNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><PubmedArticleSet></PubmedArticleSet>`)
	}))
	defer ts.Close()

	orig := efetchBase
	efetchBase = ts.URL
	defer func() { efetchBase = orig }()

	_, err := testClient(ts).Fetch(context.Background(), "999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchMalformedXML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"not": "xml"}`)
	}))
	defer ts.Close()

	orig := efetchBase
	efetchBase = ts.URL
	defer func() { efetchBase = orig }()

	_, err := testClient(ts).Fetch(context.Background(), "123")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("malformed XML should be a parse error, got %v", err)
	}
}

func TestFetchMissingAbstract(t *testing.T) {
	xml := strings.Replace(fetchXML,
		"<AbstractText>Shorter telomeres predict mortality.</AbstractText>\n          <AbstractText>Secondary section text.</AbstractText>", "", 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, xml)
	}))
	defer ts.Close()

	orig := efetchBase
	efetchBase = ts.URL
	defer func() { efetchBase = orig }()

	rec, err := testClient(ts).Fetch(context.Background(), "40000001")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if rec.Abstract != "" {
		t.Errorf("Abstract = %q, want empty", rec.Abstract)
	}
}
