// package formatter maps catalog records to view models and exports playlists to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// Format is a playlist export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat accepts a format name or a common file extension ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ExportPlaylist renders the playlist in the given format.
func ExportPlaylist(p models.Playlist, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(p)
	case FormatCSV:
		return ExportToCSV(p)
	case FormatMarkdown:
		return ExportToMarkdown(p)
	case FormatText:
		return ExportToText(p)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
}

// ExportToJSON renders the playlist with its items as indented JSON
func ExportToJSON(p models.Playlist) ([]byte, error) {
	if p.Items == nil {
		p.Items = []models.CatalogItem{}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal playlist: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts a playlist to CSV format with columns: Position, ID, Kind, Source, Title, Subtitle, Image
func ExportToCSV(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Kind", "Source", "Title", "Subtitle", "Image"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range p.Items {
		record := []string{
			fmt.Sprint(i + 1),
			item.ID,
			string(item.Kind),
			string(item.Source),
			item.Title,
			item.Subtitle,
			item.ImageURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown, using the first item's artwork as the cover
func ExportToMarkdown(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)

	if len(p.Items) > 0 && p.Items[0].ImageURL != models.PlaceholderImageURL {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", p.Items[0].ImageURL)
	}

	fmt.Fprintf(&buf, "**Items**: %d\n", len(p.Items))
	fmt.Fprintf(&buf, "**Created**: %s\n\n", p.CreatedAt.Format("2006-01-02 15:04"))

	buf.WriteString("## Items\n\n")
	for i, item := range p.Items {
		fmt.Fprintf(&buf, "%d. %s - %s (%s)\n", i+1, item.Title, item.Subtitle, item.Kind)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Name)
	fmt.Fprintf(&buf, "Items: %d\n\n", len(p.Items))

	for i, item := range p.Items {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, item.Title, item.Subtitle)
	}

	return buf.Bytes(), nil
}

// FileName returns the export file name for the playlist: a slug of its name followed by the random tail of its id.
func FileName(p models.Playlist, format Format) string {
	id := p.ID
	if i := strings.LastIndex(id, "-"); i >= 0 {
		id = id[i+1:]
	}
	slug := Slug(p.Name)
	if slug == "" {
		slug = "playlist"
	}
	return fmt.Sprintf("%s_%s.%s", slug, id, format.Ext())
}

// WritePlaylistExport renders the playlist and writes it into dir, returning the file path.
func WritePlaylistExport(p models.Playlist, format Format, dir string) (string, error) {
	data, err := ExportPlaylist(p, format)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, FileName(p, format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}

// Slug lowercases s and replaces every run of non-alphanumeric characters with a single underscore.
func Slug(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		isWord := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isWord {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('_')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
