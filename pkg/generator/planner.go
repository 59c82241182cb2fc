package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"github.com/shouni/go-manga-pdf/pkg/prompts"
	"google.golang.org/genai"
)

// Planner はストーリーのプロンプトから漫画のプラン（キャラクター・ページ・パネル構成）を生成します。
type Planner struct {
	client        gemini.GenerativeModel
	promptBuilder prompts.ScriptPrompt
	model         string
	temperature   float32
}

// NewPlanner は Planner の新しいインスタンスを初期化します。
// temperature はプランナー呼び出しにだけ適用され、画像生成には影響しないのだ。
func NewPlanner(client gemini.GenerativeModel, pb prompts.ScriptPrompt, model string, temperature float32) *Planner {
	return &Planner{
		client:        client,
		promptBuilder: pb,
		model:         model,
		temperature:   temperature,
	}
}

// Plan はスキーマ制約付きでプランナーモデルを1回呼び出し、検証済みのプランを返します。
// 応答がスキーマに適合しない場合は domain.ErrInvalidPlan を返し、再試行はしません。
func (p *Planner) Plan(ctx context.Context, story string) (*domain.MangaPlan, error) {
	if strings.TrimSpace(story) == "" {
		return nil, ErrEmptyPrompt
	}

	userPrompt, systemPrompt, err := p.promptBuilder.BuildPlanner(story)
	if err != nil {
		return nil, fmt.Errorf("プランナーのプロンプト構築に失敗しました: %w", err)
	}

	logger := slog.With("model", p.model)
	logger.InfoContext(ctx, "Starting story planning")
	start := time.Now()

	resp, err := p.client.GenerateContent(ctx, p.model, userPrompt, gemini.GenerateOptions{
		SystemPrompt:     systemPrompt,
		ResponseMIMEType: gemini.MIMETypeJSON,
		ResponseSchema:   prompts.PlanSchema(),
		Temperature:      genai.Ptr(p.temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("プランナーの呼び出しに失敗しました: %w", err)
	}

	plan, err := domain.ParsePlan([]byte(strings.TrimSpace(resp.Text)))
	if err != nil {
		return nil, fmt.Errorf("プランナーの応答が不正です: %w", err)
	}

	logger.InfoContext(ctx, "Story planning completed",
		"pages", len(plan.Pages),
		"panels", plan.TotalPanels(),
		"characters", len(plan.Characters),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return plan, nil
}
