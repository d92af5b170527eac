// package formatter provides functions to export setlist data to various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
)

// Format is an export format name.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// Formats lists the supported export formats.
var Formats = []Format{Text, Markdown, CSV, JSON}

// ParseFormat parses a format name case-insensitively; "md" and "txt" are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case CSV:
		return ".csv"
	case JSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Export renders a setlist in the given format.
func Export(sl *models.Setlist, format Format) ([]byte, error) {
	switch format {
	case Text:
		return ExportToText(sl)
	case Markdown:
		return ExportToMarkdown(sl)
	case CSV:
		return ExportToCSV(sl)
	case JSON:
		return ExportToJSON(sl)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// Title returns "<artist> Setlist - <date>".
func Title(sl *models.Setlist) string {
	return fmt.Sprintf("%s Setlist - %s", sl.DisplayArtist(), sl.EventDate)
}

// Location joins venue, city and country, skipping empty parts.
func Location(sl *models.Setlist) string {
	var parts []string
	for _, p := range []string{sl.VenueName, sl.City, sl.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ExportToCSV converts a Setlist to CSV format with columns: Position, Title, Artist, Date, Venue
func ExportToCSV(sl *models.Setlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "Date", "Venue"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, song := range sl.Songs {
		record := []string{
			strconv.Itoa(i + 1),
			song,
			sl.DisplayArtist(),
			sl.EventDate,
			sl.VenueName,
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

// ExportToMarkdown converts a Setlist to Markdown format with a link back to setlist.fm
func ExportToMarkdown(sl *models.Setlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", Title(sl))

	if loc := Location(sl); loc != "" {
		fmt.Fprintf(&buf, "**Venue**: %s\n", loc)
	}
	if sl.Tour != "" {
		fmt.Fprintf(&buf, "**Tour**: %s\n", sl.Tour)
	}
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(sl.Songs))

	buf.WriteString("## Songs\n\n")
	for i, song := range sl.Songs {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, song)
	}

	if sl.URL != "" {
		fmt.Fprintf(&buf, "\n[View on setlist.fm](%s)\n", sl.URL)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Setlist to plain text format
func ExportToText(sl *models.Setlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Artist: %s\n", sl.DisplayArtist())
	fmt.Fprintf(&buf, "Date: %s\n", sl.EventDate)
	if loc := Location(sl); loc != "" {
		fmt.Fprintf(&buf, "Venue: %s\n", loc)
	}
	if sl.Tour != "" {
		fmt.Fprintf(&buf, "Tour: %s\n", sl.Tour)
	}
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(sl.Songs))

	for i, song := range sl.Songs {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, song)
	}

	return buf.Bytes(), nil
}

// ExportToJSON generates an indented JSON representation of the setlist
func ExportToJSON(sl *models.Setlist) ([]byte, error) {
	return shared.MarshalJSON(sl, true)
}

// DefaultFilename builds "<artist>_<date><ext>" with spaces replaced by underscores.
func DefaultFilename(sl *models.Setlist, format Format) string {
	base := strings.ReplaceAll(strings.ToLower(sl.DisplayArtist()), " ", "_")
	base = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, base)
	return fmt.Sprintf("%s_%s%s", base, sl.EventDate, format.Extension())
}

// WriteExport writes a setlist export to path.
//
// Defaults to [DefaultFilename] when path is empty. Returns the written path.
func WriteExport(sl *models.Setlist, format Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(sl, format)
	}

	data, err := Export(sl, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}
