package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-manga-pdf/pkg/director"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"golang.org/x/sync/errgroup"
)

// PageGenerator は複数のパネルを1枚の漫画ページとして統合生成するコンポーネントです。
type PageGenerator struct {
	composer *MangaComposer
}

// NewPageGenerator は PageGenerator の新しいインスタンスを初期化します。
func NewPageGenerator(composer *MangaComposer) *PageGenerator {
	return &PageGenerator{composer: composer}
}

// Execute はページごとに1回のリクエストで全ページを生成し、プラン順で返します。
func (pg *PageGenerator) Execute(ctx context.Context, plan *domain.MangaPlan) ([]*gemini.ImageResponse, error) {
	images := make([]*gemini.ImageResponse, len(plan.Pages))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(pg.composer.MaxConcurrency)

	for i, page := range plan.Pages {
		eg.Go(func() error {
			refs, err := pg.composer.referencesFor(egCtx, plan, pageTexts(page)...)
			if err != nil {
				return &UnitError{PageNumber: page.PageNumber, Err: err}
			}

			logger := slog.With("page_number", page.PageNumber, "panels", len(page.Panels), "references", len(refs))
			logger.Info("Starting page generation")
			start := time.Now()

			resp, err := pg.composer.generateImage(egCtx, imageRequest{
				label:       fmt.Sprintf("page %d", page.PageNumber),
				prompt:      pg.composer.PromptBuilder.BuildPage(page),
				aspectRatio: director.PageAspect,
				references:  refs,
			}, logger)
			if err != nil {
				return &UnitError{PageNumber: page.PageNumber, Err: err}
			}

			logger.Info("Page generation completed", "duration", time.Since(start).Round(time.Millisecond))
			images[i] = resp
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// pageTexts はページ内で登場人物の判定に使うテキストを集めます。
func pageTexts(page domain.Page) []string {
	texts := []string{page.LayoutDesc}
	for _, p := range page.Panels {
		texts = append(texts, p.Description, p.VisualPrompt, p.Dialogue)
	}
	return texts
}
