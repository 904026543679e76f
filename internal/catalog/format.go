package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

var timeNow = time.Now

// FormatTable writes entries as a formatted table to the provided writer.
// Returns the number of entries formatted.
func FormatTable(w io.Writer, entries []Entry, behaviorName string) int {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No files found in behavior '%s'\n", behaviorName)
		return 0
	}

	fmt.Fprintf(w, "Files in behavior '%s':\n\n", behaviorName)

	fmt.Fprintf(w, "%-9s %-5s %-5s %-8s %s\n", "KIND", "VER", "TRY", "AGE", "FILE")
	fmt.Fprintf(w, "%-9s %-5s %-5s %-8s %s\n", "---------", "-----", "-----", "--------", "----------------------------------------")

	for _, e := range entries {
		fmt.Fprintf(w, "%-9s %-5s %-5s %-8s %s\n",
			e.Kind,
			formatNumber("v", e.Version),
			formatNumber("i", e.Attempt),
			formatAge(e.ModTime),
			e.Filename,
		)
	}

	countMsg := "file"
	if len(entries) != 1 {
		countMsg = "files"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(entries), countMsg)

	return len(entries)
}

// FormatJSONL writes entries as line-delimited JSON (JSONL) to the provided writer.
// Each entry is written as a single JSON object on its own line.
func FormatJSONL(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

func formatNumber(prefix string, n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%s%d", prefix, *n)
}

// formatAge shows modification time relative to now, like "2m ago".
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	diff := timeNow().Sub(t)
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
