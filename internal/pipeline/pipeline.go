package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-manga-pdf/internal/config"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"github.com/shouni/go-manga-pdf/pkg/storage"
	"github.com/shouni/go-manga-pdf/pkg/workflow"
)

// Execute は設定に従ってワークフローを1回実行し、結果の要約を out に書き出すのだ。
// 失敗した場合も、確定した状態までの要約を書き出してからエラーを返します。
func Execute(ctx context.Context, cfg *config.Config, out io.Writer) error {
	return execute(ctx, cfg, nil, out)
}

// execute は AI クライアントを差し替えられる Execute の本体です。client が nil なら設定から生成します。
func execute(ctx context.Context, cfg *config.Config, client gemini.GenerativeModel, out io.Writer) error {
	req, err := buildRequest(cfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store := storage.NewLocalStore()
	manager, err := workflow.New(ctx, workflow.ManagerArgs{
		Config:   cfg.ToLibraryConfig(),
		AIClient: client,
		Reader:   store,
		Writer:   store,
	})
	if err != nil {
		return fmt.Errorf("ワークフローの初期化に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "漫画生成パイプラインを起動するのだ",
		"manga", req.Manga.String(),
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"output_dir", req.OutputDir,
	)

	result, runErr := manager.Execute(ctx, req)
	if result != nil {
		if _, err := fmt.Fprintln(out, renderSummary(result)); err != nil {
			slog.WarnContext(ctx, "要約の出力に失敗しました", "error", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生しました: %w", runErr)
	}
	return nil
}

// buildRequest は CLI の指定から RunRequest を組み立てます。
func buildRequest(cfg *config.Config) (workflow.RunRequest, error) {
	mc, err := cfg.MangaConfig()
	if err != nil {
		return workflow.RunRequest{}, err
	}
	prompt, err := cfg.ResolvePrompt()
	if err != nil {
		return workflow.RunRequest{}, err
	}
	return workflow.RunRequest{
		Prompt:    prompt,
		PlanPath:  cfg.Options.PlanFile,
		OutputDir: cfg.OutputDir,
		Manga:     mc,
		PlanOnly:  cfg.Options.PlanOnly,
	}, nil
}
