package pipeline

import (
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/shouni/go-manga-pdf/pkg/workflow"
)

// renderSummary は実行結果を2列の表にします。未確定の項目は "-" になります。
func renderSummary(result *workflow.RunResult) string {
	panels := 0
	if result.Plan != nil {
		panels = result.Plan.TotalPanels()
	}
	pages := len(result.Pages)
	if pages == 0 && result.Plan != nil {
		pages = len(result.Plan.Pages)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Item", "Value"})
	tw.AppendRows([]table.Row{
		{"Run ID", result.RunID},
		{"State", string(result.State)},
		{"Pages", strconv.Itoa(pages)},
		{"Panels", strconv.Itoa(panels)},
		{"Character refs", strconv.Itoa(len(result.CharacterRefs))},
		{"Plan", orDash(result.PlanPath)},
		{"PDF", orDash(result.Document.Path)},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
