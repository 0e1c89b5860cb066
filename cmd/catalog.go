package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs one catalog search and prints the results.
//
// Multi-word queries may be passed unquoted.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	kind, err := models.ParseKind(cmd.String("kind"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	engine, err := r.Engine(cmd.Int("limit"))
	if err != nil {
		return err
	}

	r.logger.Debug("searching catalog", "query", query, "kind", kind, "provider", engine.Source())

	items, err := engine.Search(ctx, query, kind)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%d %s for %q (%s)", len(items), kind.Plural(), strings.TrimSpace(query), engine.Source()))
	for i, c := range formatter.Cards(items, nil) {
		r.writeCard(i+1, c)
	}
	return nil
}

// Lookup fetches one item by id and prints it.
func (r *Runner) Lookup(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}

	kind, err := models.ParseKind(cmd.String("kind"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	catalog, err := r.Catalog()
	if err != nil {
		return err
	}

	item, err := catalog.FetchDetail(ctx, id, kind)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(item, true)
	}

	r.writeCard(1, formatter.NewCard(*item, false))
	return nil
}

func (r *Runner) writeCard(n int, c formatter.Card) {
	r.writePlain("%d. %s\n", n, c.Title)
	if c.Subtitle != "" {
		r.writePlain("   %s\n", c.Subtitle)
	}
	r.writePlain("   Key: %s\n", c.Key)
	r.writePlain("   Image: %s\n", c.ImageURL)
}
