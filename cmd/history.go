package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

type historyEntry struct {
	Sequence int         `json:"sequence"`
	Query    string      `json:"query"`
	Kind     models.Kind `json:"kind"`
	Provider string      `json:"provider"`
	Results  int         `json:"results"`
	When     string      `json:"searched_at"`
}

// HistoryList prints recorded searches, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	history, err := r.History()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if q := cmd.String("query"); q != "" {
		criteria["query"] = q
	}
	if k := cmd.String("kind"); k != "" {
		kind, err := models.ParseKind(k)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		criteria["kind"] = kind
	}

	records, err := history.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, len(records))
		for i, rec := range records {
			entries[i] = historyEntry{
				Sequence: rec.Sequence(),
				Query:    rec.Query(),
				Kind:     rec.Kind(),
				Provider: rec.Provider(),
				Results:  rec.Results(),
				When:     rec.CreatedAt().UTC().Format(time.RFC3339),
			}
		}
		return r.writeJSON(entries, true)
	}

	if len(records) == 0 {
		return r.writePlain("No searches recorded yet\n")
	}

	now := time.Now()
	r.writePlainHeader(fmt.Sprintf("Search history (%d)", len(records)))
	for _, rec := range records {
		r.writePlain("#%d  %-30q %-7s %-8s %3d results  %s\n",
			rec.Sequence(), rec.Query(), rec.Kind(), rec.Provider(), rec.Results(), formatter.Ago(rec.CreatedAt(), now))
	}
	return nil
}

// HistoryClear deletes all recorded searches.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	history, err := r.History()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	n, err := history.Clear()
	if err != nil {
		return err
	}

	r.logger.Info("search history cleared", "deleted", n)
	return r.writePlain("✓ Deleted %d searches\n", n)
}
