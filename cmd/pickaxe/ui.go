package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hatchet-dev/pickaxe/pkg/pickaxe"
	"github.com/hatchet-dev/pickaxe/pkg/workflow/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	toolStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("62")).
			PaddingLeft(1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyles = map[store.Status]lipgloss.Style{
		store.StatusSucceeded: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		store.StatusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		store.StatusCancelled: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		store.StatusRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		store.StatusQueued:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
)

// renderResults 渲染 pick-and-run 的结果
func renderResults(toolbox string, results []pickaxe.ToolResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("toolbox %s: %d result(s)", toolbox, len(results))))
	b.WriteString("\n")

	for i, r := range results {
		body := strings.Join([]string{
			toolStyle.Render(fmt.Sprintf("%d. %s", i+1, r.Name)),
			labelStyle.Render("args   ") + prettyJSON(r.Args),
			labelStyle.Render("output ") + prettyJSON(r.Output),
		}, "\n")
		b.WriteString(boxStyle.Render(body))
		b.WriteString("\n")
	}
	return b.String()
}

// renderRuns 渲染运行记录列表
func renderRuns(runs []store.Run) string {
	if len(runs) == 0 {
		return labelStyle.Render("no runs recorded") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%-36s  %-16s  %-10s  %-8s  %s",
		"RUN", "TASK", "STATUS", "ATTEMPTS", "DURATION")))
	b.WriteString("\n")

	for _, r := range runs {
		status := fmt.Sprintf("%-10s", r.Status)
		if st, ok := statusStyles[r.Status]; ok {
			status = st.Render(status)
		}
		fmt.Fprintf(&b, "%-36s  %-16s  %s  %-8d  %s\n",
			r.ID, truncate(r.Task, 16), status, r.Attempts, r.Duration().Round(time.Millisecond))
		if r.Error != "" {
			b.WriteString(errorStyle.Render("  " + truncate(r.Error, 100)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "       ", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
