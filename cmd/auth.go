package main

import (
	"context"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthCheck performs one client-credentials exchange and reports the masked token.
func (r *Runner) AuthCheck(ctx context.Context, cmd *cli.Command) error {
	config := r.cfg()
	if models.Source(config.Catalog.Provider) == models.SourceDeezer {
		return r.writePlain("✓ The Deezer catalog needs no credential\n")
	}

	spotify := config.Credentials.Spotify
	session, err := services.NewSessionManager(spotify, services.NewHTTPClient(config.Catalog.Timeout()), r.logger)
	if err != nil {
		return err
	}

	r.logger.Info("checking app credential", "token_url", spotify.TokenURL)

	start := time.Now()
	cred, err := session.EnsureCredential(ctx)
	if err != nil {
		return err
	}
	r.logger.Debug("credential exchange finished", "elapsed", time.Since(start))

	r.writePlain("✓ Credential acquired from %s\n", spotify.TokenURL)
	r.writePlain("  Client: %s\n", shared.MaskSecret(spotify.ClientID))
	return r.writePlain("  Token: %s\n", shared.MaskSecret(string(cred)))
}
