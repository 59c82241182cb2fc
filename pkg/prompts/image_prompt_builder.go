package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-manga-pdf/pkg/domain"
)

// ImagePromptBuilder は、カラーモードを考慮して画像生成プロンプトを構築します。
type ImagePromptBuilder struct {
	color bool
}

// NewImagePromptBuilder は新しい ImagePromptBuilder を生成します。
func NewImagePromptBuilder(color domain.ColorMode) *ImagePromptBuilder {
	return &ImagePromptBuilder{color: color == domain.ColorFull}
}

// BuildCharacterSheet は、キャラクター参照シート用のプロンプトを生成します。
func (pb *ImagePromptBuilder) BuildCharacterSheet(char domain.Character) string {
	prompt := fmt.Sprintf(CharacterSheetTemplate, sanitizeInline(char.Name), sanitizeInline(char.VisualDesc))
	if pb.color {
		return prompt + colorSheetDirective
	}
	return prompt + monochromeSheetDirective
}

// BuildPanel は、パネルの作画プロンプトに画風指定を付与します。
func (pb *ImagePromptBuilder) BuildPanel(panel domain.Panel) string {
	suffix := MonochromePanelSuffix
	if pb.color {
		suffix = ColorPanelSuffix
	}
	return strings.TrimSpace(panel.VisualPrompt) + suffix
}

// BuildPage は、ページ内の全パネルを1枚で描くためのプロンプトを生成します。
func (pb *ImagePromptBuilder) BuildPage(page domain.Page) string {
	header, footer := pageHeaderMonochrome, pageFooterMonochrome
	if pb.color {
		header, footer = pageHeaderColor, pageFooterColor
	}

	descriptions := make([]string, 0, len(page.Panels))
	for i, panel := range page.Panels {
		desc := fmt.Sprintf("Panel %d: %s", i+1, sanitizeInline(panel.VisualPrompt))
		if d := formatDialogue(panel.Dialogue); d != "" {
			desc += fmt.Sprintf(" (Dialogue: %s)", d)
		}
		descriptions = append(descriptions, desc)
	}

	var sb strings.Builder
	sb.WriteString(header)
	fmt.Fprintf(&sb, "Page layout: %s. ", sanitizeInline(page.LayoutDesc))
	sb.WriteString(strings.Join(descriptions, " "))
	sb.WriteString(". ")
	sb.WriteString(footer)
	return sb.String()
}

// BuildReferenceNote は、添付した参照画像の扱いを指示する文を生成します。
func (pb *ImagePromptBuilder) BuildReferenceNote(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf(referenceNoteTemplate, strings.Join(names, ", "))
}

// sanitizeInline は改行や連続する空白を1つの空白にまとめます。
func sanitizeInline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// formatDialogue はセリフを1行にまとめ、空なら空文字を返します。
func formatDialogue(s string) string {
	return sanitizeInline(s)
}
