package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-manga-pdf/pkg/config"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"github.com/shouni/go-manga-pdf/pkg/prompts"
	"github.com/shouni/go-manga-pdf/pkg/storage"

	"golang.org/x/time/rate"
)

// Manager は、ワークフローの各工程を担う Runner 群を構築し、実行を管理します。
type Manager struct {
	cfg          config.Config
	reader       storage.InputReader
	writer       storage.OutputWriter
	aiClient     gemini.GenerativeModel
	scriptPrompt prompts.ScriptPrompt
	limiter      *rate.Limiter
}

// New は、設定を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	if args.Reader == nil {
		return nil, fmt.Errorf("InputReader は必須です")
	}
	if args.Writer == nil {
		return nil, fmt.Errorf("OutputWriter は必須です")
	}
	if err := args.Config.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}

	aiClient, err := initializeAIClient(ctx, args.AIClient, args.Config)
	if err != nil {
		return nil, err
	}

	sPrompt, err := initializeScriptPrompt(args.ScriptPrompt)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:          args.Config,
		reader:       args.Reader,
		writer:       args.Writer,
		aiClient:     aiClient,
		scriptPrompt: sPrompt,
		limiter:      newRateLimiter(args.Config),
	}, nil
}

// initializeAIClient は gemini クライアントを初期化します。
// 引数として既存のクライアントが渡された場合はそれを返します。
func initializeAIClient(ctx context.Context, client gemini.GenerativeModel, cfg config.Config) (gemini.GenerativeModel, error) {
	if client != nil {
		return client, nil
	}

	aiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// initializeScriptPrompt は ScriptPrompt ビルダーを初期化します。
// 引数として既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializeScriptPrompt(scriptPrompt prompts.ScriptPrompt) (prompts.ScriptPrompt, error) {
	if scriptPrompt != nil {
		return scriptPrompt, nil
	}

	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
	}
	return pb, nil
}

// newRateLimiter は全ての画像リクエストで共有するレートリミッターを生成します。
func newRateLimiter(cfg config.Config) *rate.Limiter {
	if cfg.RateInterval <= 0 {
		return rate.NewLimiter(rate.Inf, cfg.RateBurst)
	}
	return rate.NewLimiter(rate.Every(cfg.RateInterval), cfg.RateBurst)
}
