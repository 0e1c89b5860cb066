package formatter

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ManifestEntry describes one exported playlist.
type ManifestEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items int    `json:"items"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
}

// ExportManifest summarizes a multi-playlist export.
type ExportManifest struct {
	Format         Format          `json:"format"`
	ExportedAt     time.Time       `json:"exported_at"`
	TotalPlaylists int             `json:"total_playlists"`
	Successful     int             `json:"successful"`
	Failed         int             `json:"failed"`
	Playlists      []ManifestEntry `json:"playlists"`
}

// WriteExportManifest writes the manifest as indented JSON to path.
func WriteExportManifest(m ExportManifest, path string) error {
	if m.Playlists == nil {
		m.Playlists = []ManifestEntry{}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
