// package formatter provides functions to export playlist data to various formats (CSV, Markdown, plain text, M3U, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatM3U      Format = "m3u"
)

// Formats lists every supported [Format].
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText, FormatM3U}

// ParseFormat maps a user supplied name onto a [Format].
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
	case "m3u", "m3u8":
		return FormatM3U, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want one of json, csv, markdown, txt, m3u)", shared.ErrInvalidFlag, s)
	}
}

// Metadata is the playlist header written next to CSV exports.
type Metadata struct {
	Name         string         `json:"name"`
	Request      models.Request `json:"request"`
	Tracks       int            `json:"tracks"`
	Dropped      int            `json:"dropped,omitempty"`
	TotalSeconds int            `json:"total_seconds"`
	Duration     string         `json:"duration"`
	FetchedAt    time.Time      `json:"fetched_at"`
}

// NewMetadata summarizes export without its items.
func NewMetadata(export *models.PlaylistExport) Metadata {
	total := export.Items.TotalSeconds()
	return Metadata{
		Name:         export.Name,
		Request:      export.Request,
		Tracks:       len(export.Items),
		Dropped:      export.Dropped,
		TotalSeconds: total,
		Duration:     shared.FormatDuration(total),
		FetchedAt:    export.FetchedAt,
	}
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: Position, Artist, Title, Duration, Seconds, URL
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Artist", "Title", "Duration", "Seconds", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range export.Items {
		record := []string{
			strconv.Itoa(i + 1),
			item.Artist,
			item.Title,
			shared.FormatDuration(item.Seconds()),
			item.Duration,
			item.URL,
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

// ExportToMarkdown converts a PlaylistExport to Markdown format
func ExportToMarkdown(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Name)
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(export.Items))
	fmt.Fprintf(&buf, "**Duration**: %s\n", shared.FormatDuration(export.Items.TotalSeconds()))
	if !export.FetchedAt.IsZero() {
		fmt.Fprintf(&buf, "**Fetched**: %s\n", export.FetchedAt.Format(time.RFC1123))
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, item := range export.Items {
		fmt.Fprintf(&buf, "%d. [%s - %s](%s) [%s]\n",
			i+1, escapeMarkdown(item.Artist), escapeMarkdown(item.Title), item.URL, shared.FormatDuration(item.Seconds()))
	}

	return buf.Bytes(), nil
}

var markdownEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Name)
	fmt.Fprintf(&buf, "Tracks: %d (%s)\n\n", len(export.Items), shared.FormatDuration(export.Items.TotalSeconds()))

	for i, item := range export.Items {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, item.Artist, item.Title, shared.FormatDuration(item.Seconds()))
	}

	return buf.Bytes(), nil
}

// ExportToM3U converts a PlaylistExport to an extended M3U playlist that media players can open directly
func ExportToM3U(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("#EXTM3U\n")
	fmt.Fprintf(&buf, "#PLAYLIST:%s\n", oneLine(export.Name))

	for _, item := range export.Items {
		fmt.Fprintf(&buf, "#EXTINF:%d,%s - %s\n", item.Seconds(), oneLine(item.Artist), oneLine(item.Title))
		fmt.Fprintf(&buf, "%s\n", oneLine(item.URL))
	}

	return buf.Bytes(), nil
}

// oneLine keeps a field from breaking the line oriented M3U layout.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExportToJSON converts a PlaylistExport to indented JSON
func ExportToJSON(export *models.PlaylistExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without items)
func ToMetadataJSON(export *models.PlaylistExport) ([]byte, error) {
	return shared.MarshalJSON(NewMetadata(export), true)
}

// Render converts export to the given format.
func Render(export *models.PlaylistExport, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	case FormatM3U:
		return ExportToM3U(export)
	case FormatJSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to the export ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(export *models.PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.ID()
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a playlist to {outputDir}/README.md.
//
// Directory name defaults to the export ID.
func WriteMarkdownExport(export *models.PlaylistExport, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = export.ID()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {export.ID}_tracks.txt as the filename.
func WriteTextExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_tracks.txt", export.ID())
	}
	return writeRendered(export, ExportToText, path, "text")
}

// WriteM3UExport exports a playlist as {export.ID}.m3u unless path is given.
func WriteM3UExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.m3u", export.ID())
	}
	return writeRendered(export, ExportToM3U, path, "M3U")
}

// WriteJSONExport exports a playlist as {export.ID}.json unless path is given.
func WriteJSONExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.json", export.ID())
	}
	return writeRendered(export, ExportToJSON, path, "JSON")
}

func writeRendered(
	export *models.PlaylistExport,
	render func(*models.PlaylistExport) ([]byte, error),
	path, kind string,
) (string, error) {
	data, err := render(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", kind, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", kind, err)
	}

	return path, nil
}

// WriteExport writes export into dir in the given format and returns the created files.
//
// File names derive from the export ID.
func WriteExport(export *models.PlaylistExport, format Format, dir string) ([]string, error) {
	base := filepath.Join(dir, export.ID())

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(export, base)
		if err != nil {
			return nil, err
		}
		return []string{res.TracksFile, res.MetadataFile}, nil
	case FormatMarkdown:
		file, err := WriteMarkdownExport(export, base)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	case FormatText:
		file, err := WriteTextExport(export, base+"_tracks.txt")
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	case FormatM3U:
		file, err := WriteM3UExport(export, base+".m3u")
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	case FormatJSON:
		file, err := WriteJSONExport(export, base+".json")
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteManifest writes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
