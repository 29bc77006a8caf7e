// package formatter renders saved episodes as text, JSON, CSV or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/desertthunder/epx/internal/models"
	"github.com/desertthunder/epx/internal/shared"
	"golang.org/x/term"
)

// Format is an output format for episode listings.
type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// Formats lists every supported format.
var Formats = []Format{Text, JSON, CSV, Markdown}

// ParseFormat resolves a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return Text, nil
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, json, csv or markdown)", shared.ErrInvalidArgument, name)
	}
}

var isTerminal = func(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// EpisodeLine formats one episode the way the plain listing shows it.
func EpisodeLine(e models.Episode) string {
	return fmt.Sprintf("- %s (%s) - Released: %s", e.Name, e.ShowName, e.ReleaseDate)
}

// ExportToText renders one line per episode followed by a blank line and the total.
func ExportToText(episodes []models.Episode) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range episodes {
		buf.WriteString(EpisodeLine(e))
		buf.WriteByte('\n')
	}
	fmt.Fprintf(&buf, "\nTotal episodes listed: %d\n", len(episodes))
	return buf.Bytes(), nil
}

// ExportToJSON renders the episodes as an indented JSON array.
func ExportToJSON(episodes []models.Episode) ([]byte, error) {
	if episodes == nil {
		episodes = []models.Episode{}
	}
	data, err := json.MarshalIndent(episodes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode episodes: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV renders the episodes with columns: ID, Name, Show, Released, Added, Duration, URI
func ExportToCSV(episodes []models.Episode) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Show", "Released", "Added", "Duration", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range episodes {
		record := []string{
			e.ID,
			e.Name,
			e.ShowName,
			e.ReleaseDate,
			e.AddedAt,
			strconv.Itoa(e.DurationMS / 1000),
			e.URI,
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

// ExportToMarkdown renders a numbered Markdown list under a heading.
func ExportToMarkdown(episodes []models.Episode) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Your Episodes\n\n")
	fmt.Fprintf(&buf, "**Episodes**: %d\n\n", len(episodes))

	for i, e := range episodes {
		duration := ""
		if e.DurationMS > 0 {
			duration = fmt.Sprintf(" [%s]", FormatDuration(e.DurationMS/1000))
		}
		fmt.Fprintf(&buf, "%d. **%s** - %s (released %s)%s\n", i+1, e.Name, e.ShowName, e.ReleaseDate, duration)
	}
	return buf.Bytes(), nil
}

// Export renders episodes in format.
func Export(episodes []models.Episode, format Format) ([]byte, error) {
	switch format {
	case Text, "":
		return ExportToText(episodes)
	case JSON:
		return ExportToJSON(episodes)
	case CSV:
		return ExportToCSV(episodes)
	case Markdown:
		return ExportToMarkdown(episodes)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// Print writes episodes to w. Markdown bound for a terminal is rendered with glamour.
func Print(w io.Writer, episodes []models.Episode, format Format) error {
	data, err := Export(episodes, format)
	if err != nil {
		return err
	}

	if format == Markdown && writesToTerminal(w) {
		data = []byte(RenderMarkdown(string(data), "auto"))
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write episodes: %w", err)
	}
	return nil
}

// WriteExport writes episodes in format to path and returns the number of bytes written.
func WriteExport(path string, episodes []models.Episode, format Format) (int, error) {
	data, err := Export(episodes, format)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(data), nil
}

// RenderMarkdown styles markdown with glamour, returning it unchanged if rendering fails.
func RenderMarkdown(markdown, style string) string {
	rendered, err := glamour.Render(markdown, style)
	if err != nil {
		return markdown
	}
	return rendered
}

func writesToTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f.Fd())
}

// FormatDuration converts seconds to H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
