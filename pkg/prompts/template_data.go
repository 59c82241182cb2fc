package prompts

import (
	_ "embed"
)

const (
	ModePlannerSystem = "planner_system"
	ModePlannerUser   = "planner_user"
)

// プランナーに指示するページ数とパネル数の範囲
const (
	MinPages  = 3
	MaxPages  = 6
	MinPanels = 3
	MaxPanels = 6
)

// TemplateData はプランナープロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	InputText string
	MinPages  int
	MaxPages  int
	MinPanels int
	MaxPanels int
}

// NewTemplateData は既定のページ数・パネル数の範囲を埋めた TemplateData を返します。
func NewTemplateData(inputText string) TemplateData {
	return TemplateData{
		InputText: inputText,
		MinPages:  MinPages,
		MaxPages:  MaxPages,
		MinPanels: MinPanels,
		MaxPanels: MaxPanels,
	}
}

var (
	//go:embed planner_system.md
	PlannerSystemPrompt string
	//go:embed planner_user.md
	PlannerUserPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModePlannerSystem: PlannerSystemPrompt,
	ModePlannerUser:   PlannerUserPrompt,
}
