package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-manga-pdf/pkg/asset"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/storage"
)

const mimeTypeJSON = "application/json"

// MangaScriptRunner はプランの生成・保存・読み込みを担います。
type MangaScriptRunner struct {
	planner PlanGenerator
	writer  storage.OutputWriter
	reader  storage.InputReader
}

// NewMangaScriptRunner は依存関係を注入して初期化します。
func NewMangaScriptRunner(planner PlanGenerator, w storage.OutputWriter, r storage.InputReader) *MangaScriptRunner {
	return &MangaScriptRunner{
		planner: planner,
		writer:  w,
		reader:  r,
	}
}

// Run はストーリーからプランを生成します。
func (sr *MangaScriptRunner) Run(ctx context.Context, story string) (*domain.MangaPlan, error) {
	slog.InfoContext(ctx, "ScriptRunner: Planning story", "prompt_length", len([]rune(story)))
	return sr.planner.Plan(ctx, story)
}

// RunAndSave はプランを生成し、検証に成功した場合に限り manga_plan.json として保存します。
func (sr *MangaScriptRunner) RunAndSave(ctx context.Context, story, outputDir string) (*domain.MangaPlan, string, error) {
	plan, err := sr.Run(ctx, story)
	if err != nil {
		return nil, "", err
	}

	data, err := domain.MarshalPlan(plan)
	if err != nil {
		return nil, "", err
	}

	planPath := asset.PlanPath(outputDir)
	if err := sr.writer.Write(ctx, planPath, bytes.NewReader(data), mimeTypeJSON); err != nil {
		return nil, "", fmt.Errorf("プランの保存に失敗しました (path: %s): %w", planPath, err)
	}

	slog.InfoContext(ctx, "ScriptRunner: Plan saved", "path", planPath, "pages", len(plan.Pages))
	return plan, planPath, nil
}

// Load は保存済みのプランファイルを読み込み、厳格に検証します。
func (sr *MangaScriptRunner) Load(ctx context.Context, planPath string) (*domain.MangaPlan, error) {
	data, err := storage.ReadAll(ctx, sr.reader, planPath)
	if err != nil {
		return nil, fmt.Errorf("プランの読み込みに失敗しました: %w", err)
	}

	plan, err := domain.ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("プランファイルが不正です (path: %s): %w", planPath, err)
	}

	slog.InfoContext(ctx, "ScriptRunner: Plan loaded", "path", planPath, "pages", len(plan.Pages))
	return plan, nil
}
