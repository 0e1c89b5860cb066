package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
)

// ExportOpts contains configuration for multi-playlist exports.
type ExportOpts struct {
	Format     formatter.Format // Export format: json, csv, markdown, txt
	OutputDir  string           // Base output directory (default: crate_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max 10)
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistID   string
	PlaylistName string
	Items        int
	File         string
	Success      bool
	Error        error
}

// ExportResult summarizes an [Engine.ExportPlaylists] run. Results follow the order of the requested ids.
type ExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []PlaylistExportResult
}

type exportJob struct {
	index    int
	playlist models.Playlist
}

// ExportPlaylists writes the given playlists concurrently with a bounded worker pool and a manifest summarizing
// the run. A nil ids slice exports every playlist. Unknown ids become failed results, not errors.
func (e *Engine) ExportPlaylists(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts ExportOpts) (*ExportResult, error) {
	if ids == nil {
		for _, p := range e.playlists.List() {
			ids = append(ids, p.ID)
		}
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("crate_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, len(ids)),
	}

	jobs := make(chan exportJob, len(ids))
	done := make(chan int, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, done, result.Results, opts)
	}

	sendProgress(prog, collectingUpdate(len(ids)))
	for i, id := range ids {
		p, err := e.playlists.Get(id)
		if err != nil {
			result.Results[i] = PlaylistExportResult{PlaylistID: id, PlaylistName: fmt.Sprintf("Unknown (%s)", id), Error: err}
			done <- i
			continue
		}
		jobs <- exportJob{index: i, playlist: p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for i := range done {
		completed++
		res := result.Results[i]
		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, res.File))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteExportManifest(result.Manifest(opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))

	e.logger.Info("export finished", "dir", opts.OutputDir, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

// exportWorker writes playlists from jobs into their slot of results. Each worker owns distinct indices.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	done chan<- int,
	results []PlaylistExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		res := PlaylistExportResult{
			PlaylistID:   job.playlist.ID,
			PlaylistName: job.playlist.Name,
			Items:        job.playlist.Len(),
		}

		if err := ctx.Err(); err != nil {
			res.Error = err
		} else if path, err := formatter.WritePlaylistExport(job.playlist, opts.Format, opts.OutputDir); err != nil {
			res.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		} else {
			res.File = path
			res.Success = true
		}

		results[job.index] = res
		done <- job.index
	}
}

// Manifest converts the result into its on-disk summary.
func (r *ExportResult) Manifest(format formatter.Format) formatter.ExportManifest {
	m := formatter.ExportManifest{
		Format:         format,
		ExportedAt:     time.Now().UTC(),
		TotalPlaylists: r.TotalPlaylists,
		Successful:     r.SuccessfulExports,
		Failed:         r.FailedExports,
		Playlists:      make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := formatter.ManifestEntry{ID: res.PlaylistID, Name: res.PlaylistName, Items: res.Items}
		if res.Success {
			entry.File = filepath.Base(res.File)
		} else if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Playlists = append(m.Playlists, entry)
	}
	return m
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
