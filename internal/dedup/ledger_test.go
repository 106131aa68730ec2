// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
)

type stubLister struct {
	titles []string
	err    error
}

func (s *stubLister) ExistingTitles(_ context.Context) ([]string, error) {
	return s.titles, s.err
}

func TestLedgerAddContains(t *testing.T) {
	l := New()
	l.Add("Telomere Length and Mortality")

	tests := []struct {
		title string
		want  bool
	}{
		{"Telomere Length and Mortality", true},
		{"telomere length and mortality", true},
		{"  TELOMERE LENGTH AND MORTALITY  ", true},
		{"A Different Study", false},
	}
	for _, tt := range tests {
		if got := l.Contains(tt.title); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestLedgerIgnoresEmptyTitles(t *testing.T) {
	l := New()
	l.Add("   ")
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
	if l.Contains("") {
		t.Error("empty title should never be contained")
	}
}

func TestLedgerLoad(t *testing.T) {
	l := New()
	var buf bytes.Buffer
	l.Load(context.Background(), &stubLister{titles: []string{"Study One", "study one", "Study Two"}}, &buf)

	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (case-duplicates collapse)", l.Len())
	}
	if !l.Contains("STUDY TWO") {
		t.Error("expected Study Two in ledger")
	}
	if !strings.Contains(buf.String(), "2 existing study titles") {
		t.Errorf("unexpected load output: %q", buf.String())
	}
}

func TestLedgerLoadErrorDegradesToEmpty(t *testing.T) {
	l := New()
	var buf bytes.Buffer
	l.Load(context.Background(), &stubLister{err: fmt.Errorf("connection refused")}, &buf)

	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after failed load", l.Len())
	}
	if !strings.Contains(buf.String(), "warning") {
		t.Errorf("expected warning in output, got %q", buf.String())
	}
}
