package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.trai.ch/crate/internal/ui/style"
	"go.trai.ch/zerr"
)

// PackageStatus is one row of the status report.
type PackageStatus struct {
	Name      string            `json:"name"`
	Committed string            `json:"committed"`
	Staged    string            `json:"staged,omitempty"`
	Built     string            `json:"built,omitempty"`
	Released  map[string]string `json:"released,omitempty"`
	Ignored   []string          `json:"ignored,omitempty"`
	BuiltAt   *time.Time        `json:"builtAt,omitempty"`
	Hash      string            `json:"hash,omitempty"`
}

// Status reports the version and release state of every package.
func (a *App) Status(ctx context.Context, opts Options) error {
	s, err := a.open(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close(ctx, s)
	if err := a.scan(ctx, s); err != nil {
		return err
	}

	rows := make([]PackageStatus, 0, len(s.ws.Packages))
	for _, pkg := range s.ws.Packages {
		row := PackageStatus{
			Name:      pkg.Name,
			Committed: pkg.CommittedVersion.String(),
			Released:  pkg.ReleaseState,
			Ignored:   pkg.IgnoredChannels,
		}
		if pkg.StagedVersion != nil {
			row.Staged = pkg.StagedVersion.String()
		}
		if pkg.LatestBuiltVersion != nil {
			row.Built = pkg.LatestBuiltVersion.String()
		}
		info, err := a.store.Get(s.cfg.Root, pkg.Name)
		if err != nil {
			a.logger.Warn(fmt.Sprintf("build info of %s unreadable: %v", pkg.Name, err))
		} else if info != nil {
			row.Hash = info.OutputHash
			if !info.Timestamp.IsZero() {
				ts := info.Timestamp
				row.BuiltAt = &ts
			}
		}
		rows = append(rows, row)
	}

	if opts.JSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return zerr.Wrap(err, "failed to encode status")
		}
		return nil
	}
	return renderStatus(a.stdout, rows, s.cfg.ChannelNames())
}

// renderStatus prints rows as a table with one column per release channel.
func renderStatus(w io.Writer, rows []PackageStatus, channels []string) error {
	headers := append([]string{"PACKAGE", "COMMITTED", "STAGED", "BUILT"}, channels...)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(style.Slate)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Foreground(style.Copper).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, r := range rows {
		cells := []string{r.Name, r.Committed, dash(r.Staged), built(r)}
		for _, ch := range channels {
			cells = append(cells, released(r, ch))
		}
		t.Row(cells...)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func built(r PackageStatus) string {
	switch {
	case r.Built == "":
		return style.Circle + " never"
	case r.Built == r.Committed:
		return style.Check + " " + r.Built
	default:
		return style.Warning + " " + r.Built
	}
}

func released(r PackageStatus, channel string) string {
	if slices.Contains(r.Ignored, channel) {
		return "ignored"
	}
	v, ok := r.Released[channel]
	switch {
	case !ok:
		return "-"
	case v == r.Committed:
		return style.Check + " " + v
	default:
		return style.Arrow + " " + v
	}
}
