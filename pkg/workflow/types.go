package workflow

import (
	"time"

	"github.com/shouni/go-manga-pdf/pkg/config"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"github.com/shouni/go-manga-pdf/pkg/prompts"
	"github.com/shouni/go-manga-pdf/pkg/storage"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
// AIClient と ScriptPrompt は省略でき、nil の場合は Config から生成します。
type ManagerArgs struct {
	Config       config.Config
	AIClient     gemini.GenerativeModel
	ScriptPrompt prompts.ScriptPrompt
	Reader       storage.InputReader
	Writer       storage.OutputWriter
}

// RunRequest は1回の実行の入力です。Prompt と PlanPath のどちらか一方を指定します。
type RunRequest struct {
	// Prompt はプランナーに渡すストーリーです。
	Prompt string
	// PlanPath は保存済みのプランファイルです。指定するとプランナーを呼び出しません。
	PlanPath  string
	OutputDir string
	Manga     domain.MangaConfig
	// PlanOnly はプランの保存で実行を終えます。
	PlanOnly bool
}

// RunResult は1回の実行で確定した状態と成果物です。
// 失敗した場合も、それまでに確定した成果物は保持されます。
type RunResult struct {
	RunID         string
	State         State
	History       []State
	OutputDir     string
	PlanPath      string
	Plan          *domain.MangaPlan
	CharacterRefs []domain.CharacterReference
	Pages         []domain.PageArtifact
	Document      domain.MangaDocument
	Duration      time.Duration
}

// ImageRunners は1回の実行で参照画像ストアを共有する画像系の Runner 群です。
type ImageRunners struct {
	Design DesignRunner
	Panel  PanelImageRunner
	Page   PageImageRunner
}
