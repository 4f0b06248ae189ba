package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/justchokingaround/anidb/internal/anidb"
	"github.com/justchokingaround/anidb/internal/titles"
)

const titleColumnWidth = 48

// writeOutput encodes v as yaml or json
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want text, yaml or json)", format)
	}
}

func printAnime(w io.Writer, record anidb.AnimeRecord) error {
	title, err := record.MainTitle()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (aid %d)\n", title, record.AID)
	fmt.Fprintf(w, "Type:     %s\n", record.Type)
	fmt.Fprintf(w, "Episodes: %d\n", record.EpisodeCount)
	fmt.Fprintf(w, "Aired:    %s - %s\n", formatDate(record.StartDate), formatDate(record.EndDate))

	if len(record.Episodes) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	for _, ep := range record.Episodes {
		display, err := ep.DisplayTitle()
		if err != nil {
			display = "-"
		}
		fmt.Fprintf(w, "%s  %s  %s\n",
			runewidth.FillLeft(ep.EpNo, 5),
			runewidth.FillRight(runewidth.Truncate(display, titleColumnWidth, "..."), titleColumnWidth),
			formatLength(ep.LengthMinutes))
	}
	return nil
}

func formatDate(d *anidb.Date) string {
	if d == nil {
		return "?"
	}
	return d.String()
}

func formatLength(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return strconv.Itoa(minutes) + "m"
}

func printIndex(w io.Writer, index anidb.TitlesIndex) error {
	for _, entry := range index.Entries {
		title, err := entry.MainTitle()
		if err != nil {
			title = "-"
		}
		fmt.Fprintf(w, "%d\t%s\n", entry.AID, title)
	}
	return nil
}

func printMatches(w io.Writer, matches []titles.Match) error {
	for _, m := range matches {
		main, err := m.Entry.MainTitle()
		if err != nil {
			main = m.Title.Text
		}

		line := fmt.Sprintf("%s  %s",
			runewidth.FillLeft(strconv.Itoa(m.Entry.AID), 6),
			runewidth.FillRight(runewidth.Truncate(main, titleColumnWidth, "..."), titleColumnWidth))
		if m.Title.Text != main {
			line += fmt.Sprintf("  [%s: %s]", m.Title.Lang, m.Title.Text)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	return nil
}

// tierStatus is the cache status line of one tier
type tierStatus struct {
	Name    string
	Path    string
	Size    int64
	ModTime string
	Entries int
	Err     error
}

type pather interface {
	Path() string
}

func inspectTier(ctx context.Context, tier titles.Backend) tierStatus {
	status := tierStatus{Name: tier.Name()}

	if p, ok := tier.(pather); ok {
		status.Path = p.Path()
		if info, err := os.Stat(status.Path); err == nil {
			status.Size = info.Size()
			status.ModTime = humanize.Time(info.ModTime())
		}
	}

	res := tier.Load(ctx)
	if res.Found() {
		status.Entries = res.Index().Len()
	} else {
		status.Err = res.Err()
	}
	return status
}

func printStatus(w io.Writer, statuses []tierStatus) error {
	for _, s := range statuses {
		fmt.Fprintf(w, "%s\n", s.Name)
		if s.Path != "" {
			fmt.Fprintf(w, "  path:    %s\n", s.Path)
		}
		if s.Size > 0 {
			fmt.Fprintf(w, "  size:    %s\n", humanize.Bytes(uint64(s.Size)))
			fmt.Fprintf(w, "  updated: %s\n", s.ModTime)
		}
		if s.Err != nil {
			fmt.Fprintf(w, "  state:   missing (%v)\n", s.Err)
			continue
		}
		fmt.Fprintf(w, "  state:   %s works\n", humanize.Comma(int64(s.Entries)))
	}
	return nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
