package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"golang.org/x/sync/errgroup"
)

// PanelGenerator は、キャラクターの一貫性を保ちながら並列で全パネルを生成します。
type PanelGenerator struct {
	composer *MangaComposer
}

// NewPanelGenerator は PanelGenerator の新しいインスタンスを初期化します。
func NewPanelGenerator(composer *MangaComposer) *PanelGenerator {
	return &PanelGenerator{composer: composer}
}

// Execute はプランの全パネルを生成し、[ページ][パネル] の順で返します。
// いずれかのパネルが再試行を使い切ると残りの生成を取り消し、UnitError を返します。
func (pg *PanelGenerator) Execute(ctx context.Context, plan *domain.MangaPlan) ([][]*gemini.ImageResponse, error) {
	images := make([][]*gemini.ImageResponse, len(plan.Pages))
	for i, page := range plan.Pages {
		images[i] = make([]*gemini.ImageResponse, len(page.Panels))
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(pg.composer.MaxConcurrency)

	pb := pg.composer.PromptBuilder

	for pi, page := range plan.Pages {
		aspect := pg.composer.Layout.PanelAspect(len(page.Panels))
		for qi, panel := range page.Panels {
			eg.Go(func() error {
				refs, err := pg.composer.referencesFor(egCtx, plan, panel.VisualPrompt, panel.Description, panel.Dialogue)
				if err != nil {
					return &UnitError{PageNumber: page.PageNumber, PanelID: panel.ID, Err: err}
				}

				logger := slog.With(
					"page_number", page.PageNumber,
					"panel_id", panel.ID,
					"references", len(refs),
					"aspect_ratio", aspect,
				)
				logger.Info("Starting panel generation")
				start := time.Now()

				resp, err := pg.composer.generateImage(egCtx, imageRequest{
					label:       fmt.Sprintf("page %d panel %d", page.PageNumber, panel.ID),
					prompt:      pb.BuildPanel(panel),
					aspectRatio: aspect,
					references:  refs,
				}, logger)
				if err != nil {
					return &UnitError{PageNumber: page.PageNumber, PanelID: panel.ID, Err: err}
				}

				logger.Info("Panel generation completed", "duration", time.Since(start).Round(time.Millisecond))
				images[pi][qi] = resp
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
