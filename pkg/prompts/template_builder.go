package prompts

import (
	"fmt"
	"strings"
	"text/template"
)

// TextPromptBuilder はプランナープロンプトのテンプレートを管理し、モード選択のロジックを内包します。
type TextPromptBuilder struct {
	templates map[string]*template.Template
}

// NewTextPromptBuilder は埋め込みテンプレートを解析して TextPromptBuilder を初期化します。
func NewTextPromptBuilder() (*TextPromptBuilder, error) {
	parsedTemplates := make(map[string]*template.Template)
	for mode, content := range allTemplates {
		if content == "" {
			return nil, fmt.Errorf("プロンプトテンプレート '%s' (go:embed) の読み込みに失敗しました: 内容が空です", mode)
		}

		tmpl, err := template.New(mode).Option("missingkey=error").Parse(content)
		if err != nil {
			return nil, fmt.Errorf("プロンプト '%s' の解析に失敗: %w", mode, err)
		}
		parsedTemplates[mode] = tmpl
	}

	return &TextPromptBuilder{
		templates: parsedTemplates,
	}, nil
}

// Build は、要求されたモードに応じて適切なテンプレートを実行します。
func (b *TextPromptBuilder) Build(mode string, data TemplateData) (string, error) {
	tmpl, ok := b.templates[mode]
	if !ok {
		return "", fmt.Errorf("不明なモードです: '%s'", mode)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("プロンプトテンプレートの実行に失敗しました: %w", err)
	}

	return sb.String(), nil
}

// BuildPlanner はプランナー用のシステムプロンプトとユーザープロンプトを組み立てます。
func (b *TextPromptBuilder) BuildPlanner(story string) (userPrompt string, systemPrompt string, err error) {
	data := NewTemplateData(story)
	if systemPrompt, err = b.Build(ModePlannerSystem, data); err != nil {
		return "", "", err
	}
	if userPrompt, err = b.Build(ModePlannerUser, data); err != nil {
		return "", "", err
	}
	return userPrompt, systemPrompt, nil
}
