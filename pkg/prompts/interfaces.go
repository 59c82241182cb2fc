package prompts

import "github.com/shouni/go-manga-pdf/pkg/domain"

// ScriptPrompt は、プランナー用の AI プロンプトを構築する契約です。
type ScriptPrompt interface {
	// BuildPlanner は、ストーリーからユーザープロンプトとシステムプロンプトを生成します。
	BuildPlanner(story string) (userPrompt string, systemPrompt string, err error)
}

// ImagePrompt は、画像生成用の AI プロンプトを構築する契約です。
type ImagePrompt interface {
	// BuildCharacterSheet は、キャラクター参照シート用のプロンプトを生成します。
	BuildCharacterSheet(char domain.Character) string
	// BuildPanel は、単一パネル用のプロンプトを生成します。
	BuildPanel(panel domain.Panel) string
	// BuildPage は、ページ全体を一度に描くためのプロンプトを生成します。
	BuildPage(page domain.Page) string
	// BuildReferenceNote は、添付した参照画像の扱いを指示する文を生成します。
	BuildReferenceNote(names []string) string
}
