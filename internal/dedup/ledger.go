// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup tracks the normalized titles of already-archived studies so
// a run never inserts the same study twice.
package dedup

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Lister supplies the titles already present in the external archive. The
// implementation handles its own pagination and returns the full set.
type Lister interface {
	ExistingTitles(ctx context.Context) ([]string, error)
}

// Ledger is an in-memory set of normalized study titles. It is seeded once
// from the archive at run start and appended to after each confirmed insert.
// All access happens from the single orchestration goroutine; no locking.
type Ledger struct {
	titles map[string]struct{}
}

// New returns an empty Ledger.
func New() *Ledger {
	return &Ledger{titles: make(map[string]struct{})}
}

// Load seeds the ledger from the archive. A load failure degrades to an
// empty ledger and a warning rather than aborting the run: the run proceeds
// and accepts the risk of duplicate inserts.
func (l *Ledger) Load(ctx context.Context, src Lister, w io.Writer) {
	titles, err := src.ExistingTitles(ctx)
	if err != nil {
		fmt.Fprintf(w, "warning: loading existing titles: %v (continuing with empty ledger)\n", err)
		return
	}
	for _, t := range titles {
		l.Add(t)
	}
	fmt.Fprintf(w, "loaded %d existing study titles for dedup\n", l.Len())
}

// Contains reports whether the normalized title is already in the ledger.
func (l *Ledger) Contains(title string) bool {
	_, ok := l.titles[Normalize(title)]
	return ok
}

// Add records a title. Callers invoke Add only after the archive confirms
// the insert, keeping the ledger consistent with the store within a run.
func (l *Ledger) Add(title string) {
	n := Normalize(title)
	if n == "" {
		return
	}
	l.titles[n] = struct{}{}
}

// Len returns the number of tracked titles.
func (l *Ledger) Len() int {
	return len(l.titles)
}

// Normalize lowercases and trims a title for comparison.
func Normalize(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
