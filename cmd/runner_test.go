package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRunner(t *testing.T) (*Runner, *tu.MockCatalog, *bytes.Buffer) {
	t.Helper()
	catalog := &tu.MockCatalog{
		Items: []models.CatalogItem{
			tu.Track("1", "Bohemian Rhapsody", "Queen"),
			tu.Track("2", "Bohemian Like You", "The Dandy Warhols"),
			tu.Track("3", "Under Pressure", "Queen, David Bowie"),
		},
	}
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  shared.DefaultConfig(),
		Catalog: catalog,
		DB:      newTestDB(t),
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
	})
	return runner, catalog, output
}

func run(r *Runner, args ...string) error {
	return newApp(r).Run(context.Background(), append([]string{"crate"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			catalog := &tu.MockCatalog{}
			db := newTestDB(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Catalog:    catalog,
				DB:         db,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
			if runner.history == nil {
				t.Error("expected history repository to be built from db")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil config falls back to defaults on use", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.cfg() == nil || runner.cfg().Catalog.Provider != "spotify" {
				t.Error("expected default config")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"search", "lookup", "history", "auth", "setup", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("Close", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{DB: newTestDB(t)})

		if err := runner.Close(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if runner.history != nil || runner.db != nil {
			t.Error("expected history to be released")
		}
		if err := runner.Close(); err != nil {
			t.Errorf("second Close should be a no-op, got %v", err)
		}
	})
}

func TestSearchCommand(t *testing.T) {
	t.Run("prints results and records history", func(t *testing.T) {
		runner, catalog, output := newTestRunner(t)

		if err := run(runner, "search", "bohemian"); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, `2 tracks for "bohemian"`) || !strings.Contains(out, "Bohemian Rhapsody") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if catalog.LastLimit() != 12 {
			t.Errorf("expected configured limit, got %d", catalog.LastLimit())
		}

		records, err := runner.history.List(nil)
		if err != nil || len(records) != 1 || records[0].Query() != "bohemian" {
			t.Errorf("expected one history record, got %v (%v)", records, err)
		}
	})

	t.Run("joins unquoted words", func(t *testing.T) {
		runner, _, output := newTestRunner(t)

		if err := run(runner, "search", "under", "pressure"); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(output.String(), "Under Pressure") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("json output", func(t *testing.T) {
		runner, _, output := newTestRunner(t)

		if err := run(runner, "search", "--json", "--limit", "5", "bohemian"); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		var items []models.CatalogItem
		if err := json.Unmarshal(output.Bytes(), &items); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if len(items) != 2 || items[0].Key() != "spotify:track:1" {
			t.Errorf("unexpected items %+v", items)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		if err := run(runner, "search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("invalid kind", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		if err := run(runner, "search", "--kind", "podcast", "x"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("catalog failure", func(t *testing.T) {
		runner, catalog, _ := newTestRunner(t)
		catalog.SearchErr = &shared.CatalogError{Provider: "spotify", Status: 401, Message: "The access token expired"}

		err := run(runner, "search", "queen")
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestLookupCommand(t *testing.T) {
	t.Run("prints the item", func(t *testing.T) {
		runner, catalog, output := newTestRunner(t)

		if err := run(runner, "lookup", "--kind", "track", "3"); err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if !strings.Contains(output.String(), "Under Pressure") || !strings.Contains(output.String(), "spotify:track:3") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
		if catalog.DetailCalls() != 1 {
			t.Errorf("expected one detail call, got %d", catalog.DetailCalls())
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		err := run(runner, "lookup", "missing")

		var catErr *shared.CatalogError
		if !errors.As(err, &catErr) || catErr.Status != http.StatusNotFound {
			t.Errorf("expected 404 CatalogError, got %v", err)
		}
	})
}

func TestHistoryCommand(t *testing.T) {
	runner, _, output := newTestRunner(t)

	for _, q := range []string{"bohemian", "pressure"} {
		if err := run(runner, "search", q); err != nil {
			t.Fatalf("search %q failed: %v", q, err)
		}
	}
	output.Reset()

	if err := run(runner, "history", "list"); err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	out := output.String()
	if strings.Index(out, `"pressure"`) > strings.Index(out, `"bohemian"`) {
		t.Errorf("expected newest first:\n%s", out)
	}

	output.Reset()
	if err := run(runner, "history", "list", "--json", "--query", "bohem"); err != nil {
		t.Fatalf("history list --json failed: %v", err)
	}
	var entries []historyEntry
	if err := json.Unmarshal(output.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(entries) != 1 || entries[0].Results != 2 || entries[0].Provider != "spotify" {
		t.Errorf("unexpected entries %+v", entries)
	}

	output.Reset()
	if err := run(runner, "history", "clear"); err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	if !strings.Contains(output.String(), "Deleted 2 searches") {
		t.Errorf("unexpected output %q", output.String())
	}

	output.Reset()
	run(runner, "history", "list")
	if !strings.Contains(output.String(), "No searches recorded yet") {
		t.Errorf("unexpected output %q", output.String())
	}
}

func TestAuthCheckCommand(t *testing.T) {
	newConfig := func(tokenURL string) *shared.Config {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientID = "client-id-abcd"
		config.Credentials.Spotify.ClientSecret = "client-secret"
		config.Credentials.Spotify.TokenURL = tokenURL
		return config
	}

	t.Run("masks the acquired token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, pass, ok := r.BasicAuth(); !ok || user != "client-id-abcd" || pass != "client-secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"app-token-9876","token_type":"Bearer","expires_in":3600}`)
		}))
		defer srv.Close()

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: newConfig(srv.URL), Logger: shared.NewLogger(io.Discard), Output: output})

		if err := run(runner, "auth", "check"); err != nil {
			t.Fatalf("auth check failed: %v", err)
		}

		out := output.String()
		if strings.Contains(out, "app-token-9876") {
			t.Error("the token must never be printed in full")
		}
		if !strings.Contains(out, shared.MaskSecret("app-token-9876")) || !strings.Contains(out, shared.MaskSecret("client-id-abcd")) {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("rejected credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_client","error_description":"Invalid client"}`)
		}))
		defer srv.Close()

		runner := NewRunner(RunnerOpts{Config: newConfig(srv.URL), Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})

		if err := run(runner, "auth", "check"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})

		if err := run(runner, "auth", "check"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("deezer needs none", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), Logger: shared.NewLogger(io.Discard), Output: output})

		if err := run(runner, "--provider", "deezer", "auth", "check"); err != nil {
			t.Fatalf("auth check failed: %v", err)
		}
		if !strings.Contains(output.String(), "needs no credential") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})

		if err := run(runner, "--config", path, "setup", "config"); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "[credentials.spotify]") {
			t.Error("expected the example config to be written")
		}

		again := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})
		if err := run(again, "--config", path, "setup", "config"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected existing file to be refused, got %v", err)
		}
	})

	t.Run("config in working directory", func(t *testing.T) {
		dir := t.TempDir()
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, dir)
		t.Cleanup(func() { tu.MustChdir(t, wd) })

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		if err := run(runner, "setup", "config"); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
	})

	t.Run("database and rollback", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Database.Path = filepath.Join(t.TempDir(), "crate.db")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard), Output: output})

		if err := run(runner, "setup", "database"); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		tu.AssertFileExists(t, config.Database.Path)
		if !strings.Contains(output.String(), "Database ready") {
			t.Errorf("unexpected output %q", output.String())
		}

		if err := run(runner, "setup", "database", "--rollback"); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if !strings.Contains(output.String(), "Rolled back") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}
