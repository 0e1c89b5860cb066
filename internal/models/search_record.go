package models

import (
	"fmt"
	"strings"
	"time"
)

// SearchRecord is one executed catalog search, persisted for the history command.
type SearchRecord struct {
	id        string
	sequence  int
	query     string
	kind      Kind
	provider  string
	results   int
	createdAt time.Time
	updatedAt time.Time
}

// NewSearchRecord creates a [SearchRecord] stamped with the current time.
func NewSearchRecord(sequence int, query string, kind Kind, provider string, results int) *SearchRecord {
	now := time.Now()
	return &SearchRecord{
		sequence:  sequence,
		query:     query,
		kind:      kind,
		provider:  provider,
		results:   results,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *SearchRecord) ID() string           { return r.id }
func (r *SearchRecord) Sequence() int        { return r.sequence }
func (r *SearchRecord) Query() string        { return r.query }
func (r *SearchRecord) Kind() Kind           { return r.kind }
func (r *SearchRecord) Provider() string     { return r.provider }
func (r *SearchRecord) Results() int         { return r.results }
func (r *SearchRecord) CreatedAt() time.Time { return r.createdAt }
func (r *SearchRecord) UpdatedAt() time.Time { return r.updatedAt }

func (r *SearchRecord) SetID(id string)          { r.id = id }
func (r *SearchRecord) SetSequence(sequence int) { r.sequence = sequence }
func (r *SearchRecord) SetResults(results int)   { r.results = results }
func (r *SearchRecord) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *SearchRecord) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// Validate checks the record has a query, a known kind and a provider.
func (r *SearchRecord) Validate() error {
	if r.id == "" {
		return fmt.Errorf("search record id is required")
	}
	if strings.TrimSpace(r.query) == "" {
		return fmt.Errorf("search query is required")
	}
	if !r.kind.Valid() {
		return fmt.Errorf("invalid kind %q", r.kind)
	}
	if r.provider == "" {
		return fmt.Errorf("provider is required")
	}
	if r.results < 0 {
		return fmt.Errorf("result count cannot be negative")
	}
	return nil
}

var _ Model = (*SearchRecord)(nil)
