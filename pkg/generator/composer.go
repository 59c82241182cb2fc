package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-manga-pdf/pkg/director"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"github.com/shouni/go-manga-pdf/pkg/prompts"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// MangaComposer は画像生成系のジェネレーターが共有する依存関係をまとめたものです。
// AI クライアント、プロンプトビルダー、レート制限、リトライ方針、参照画像ストアを保持します。
type MangaComposer struct {
	AIClient       gemini.GenerativeModel
	PromptBuilder  prompts.ImagePrompt
	RateLimiter    *rate.Limiter
	Retry          RetryPolicy
	ImageModel     string
	MaxConcurrency int
	References     *ReferenceStore
	Layout         *director.LayoutManager
}

// NewMangaComposer は MangaComposer の新しいインスタンスを初期化済みの状態で生成します。
func NewMangaComposer(
	client gemini.GenerativeModel,
	pb prompts.ImagePrompt,
	limiter *rate.Limiter,
	retry RetryPolicy,
	imageModel string,
	maxConcurrency int,
	refs *ReferenceStore,
) *MangaComposer {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &MangaComposer{
		AIClient:       client,
		PromptBuilder:  pb,
		RateLimiter:    limiter,
		Retry:          retry,
		ImageModel:     imageModel,
		MaxConcurrency: maxConcurrency,
		References:     refs,
		Layout:         director.NewLayoutManager(),
	}
}

// imageRequest は1回の画像生成単位の入力です。
type imageRequest struct {
	label       string
	prompt      string
	aspectRatio string
	references  []domain.CharacterReference
}

// generateImage はリトライ方針に従って画像を1枚生成します。
// レート制限の待機は試行ごとに行います。
func (mc *MangaComposer) generateImage(ctx context.Context, req imageRequest, logger *slog.Logger) (*gemini.ImageResponse, error) {
	parts := mc.buildParts(req)
	opts := gemini.GenerateOptions{
		ResponseModalities: []string{gemini.ModalityImage, gemini.ModalityText},
		AspectRatio:        req.aspectRatio,
	}

	var result *gemini.ImageResponse
	err := mc.Retry.Do(ctx, req.label, func(ctx context.Context) error {
		if err := mc.RateLimiter.Wait(ctx); err != nil {
			return permanent(fmt.Errorf("リミッター待機中にエラーが発生しました: %w", err))
		}

		start := time.Now()
		resp, err := mc.AIClient.GenerateWithParts(ctx, mc.ImageModel, parts, opts)
		if err != nil {
			return err
		}
		img, err := gemini.ExtractImage(resp)
		if err != nil {
			return err
		}

		logger.Debug("Image response received", "duration", time.Since(start).Round(time.Millisecond), "mime_type", img.MimeType)
		result = img
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// buildParts はプロンプトと参照画像からリクエストのパートを組み立てます。
func (mc *MangaComposer) buildParts(req imageRequest) []*genai.Part {
	var (
		imageParts []*genai.Part
		names      []string
	)
	for _, ref := range req.references {
		if p := gemini.ImagePart(ref.Data); p != nil {
			imageParts = append(imageParts, p)
			names = append(names, ref.Name)
		}
	}

	text := req.prompt
	if note := mc.PromptBuilder.BuildReferenceNote(names); note != "" {
		text = note + "\n\n" + text
	}

	parts := make([]*genai.Part, 0, len(imageParts)+1)
	parts = append(parts, &genai.Part{Text: text})
	return append(parts, imageParts...)
}

// referencesFor はテキスト中に登場するキャラクターの参照画像を返します。
// 名前が一つも登場しない場合は、登録済みの参照画像をすべて返します。
func (mc *MangaComposer) referencesFor(ctx context.Context, plan *domain.MangaPlan, texts ...string) ([]domain.CharacterReference, error) {
	if mc.References == nil || mc.References.Len() == 0 {
		return nil, nil
	}
	chars := plan.CharactersIn(texts...)
	if len(chars) == 0 {
		return mc.References.All(ctx)
	}
	return mc.References.Resolve(ctx, chars)
}
