package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/internal/voices"
)

var (
	accent = lipgloss.Color("#00ff9f")
	dim    = lipgloss.Color("#6e7681")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle   = lipgloss.NewStyle().Foreground(dim).Width(12)
	infoStyle    = lipgloss.NewStyle().Foreground(dim)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d29922"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149"))
	borderStyle  = lipgloss.NewStyle().Foreground(dim)
)

// Status lines go to stderr so stdout carries only results.
func printInfo(format string, args ...any) {
	fmt.Fprintln(os.Stderr, infoStyle.Render("• "+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(os.Stderr, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func printWarn(format string, args ...any) {
	fmt.Fprintln(os.Stderr, warnStyle.Render("! "+fmt.Sprintf(format, args...)))
}

// printProgress reports each stage once, as it changes.
func printProgress() func(podcast.Progress) {
	var last podcast.Stage
	return func(p podcast.Progress) {
		if p.Stage == last {
			return
		}
		last = p.Stage
		printInfo("[%3d%%] %s", p.Percent, strings.ReplaceAll(string(p.Stage), "_", " "))
	}
}

func statusStyle(s podcast.Status) lipgloss.Style {
	switch s {
	case podcast.StatusSuccess:
		return successStyle
	case podcast.StatusPartial:
		return warnStyle
	default:
		return errorStyle
	}
}

func field(label, value string) string {
	return labelStyle.Render(label) + value
}

func renderArtifact(a *podcast.Artifact) string {
	lines := []string{
		titleStyle.Render("Podcast " + a.JobID),
		field("status", statusStyle(a.Status).Render(string(a.Status))),
	}
	if a.Path != "" {
		lines = append(lines,
			field("file", a.Path),
			field("duration", fmt.Sprintf("%.1fs", a.DurationSeconds)),
			field("size", formatBytes(a.SizeBytes)),
		)
		if v := a.Volume; v != nil {
			lines = append(lines, field("volume", fmt.Sprintf("mean %.1f dB, max %.1f dB", v.MeanDB, v.MaxDB)))
		}
	}
	lines = append(lines,
		field("segments", fmt.Sprintf("%d/%d", len(a.Segments), a.Requested)),
		field("script", string(a.ScriptSource)),
		field("elapsed", a.Elapsed.Round(100 * time.Millisecond).String()),
	)
	if len(a.Degradations) > 0 {
		lines = append(lines, field("degraded", warnStyle.Render(strings.Join(a.Degradations, ", "))))
	}
	if a.Reason != "" {
		lines = append(lines, field("reason", a.Reason))
	}
	return strings.Join(lines, "\n")
}

func printBatchResult(r podcast.BatchResult) {
	if r.Succeeded() {
		printSuccess("%s (%s, %.0fs)", r.Topic, r.Status, r.ActualTime)
		return
	}
	printWarn("%s failed: %s", r.Topic, r.Error)
}

func renderBatchReport(r *podcast.BatchReport) string {
	rows := make([][]string, 0, len(r.Details))
	for i, d := range r.Details {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			truncate(d.Topic, 40),
			string(d.Scene),
			strconv.Itoa(d.Duration),
			string(d.Status),
			fmt.Sprintf("%.0fs", d.ActualTime),
			formatBytes(d.FileSize),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("#", "TOPIC", "SCENE", "MIN", "STATUS", "TIME", "SIZE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(accent)
			}
			if col == 4 {
				return s.Inherit(statusStyle(r.Details[row].Status))
			}
			return s
		})

	sum := r.Summary
	summary := fmt.Sprintf("%d/%d succeeded (%.0f%%), %s total, wall time %.0fs",
		sum.Successful, sum.TotalTopics, sum.SuccessRate*100, formatBytes(sum.TotalFileSize), sum.WallTime)
	return t.Render() + "\n" + titleStyle.Render(summary)
}

func renderVoices(l *voices.Listing) string {
	rows := make([][]string, 0, len(l.Voices))
	for _, v := range l.Voices {
		official := ""
		if v.Official {
			official = "yes"
		}
		rows = append(rows, []string{v.ID, v.Name, v.Category, official})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("VOICE ID", "NAME", "CATEGORY", "OFFICIAL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(accent)
			}
			return s
		})
	return t.Render() + "\n" + infoStyle.Render(fmt.Sprintf("%d voices, source: %s", len(l.Voices), l.Source))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
