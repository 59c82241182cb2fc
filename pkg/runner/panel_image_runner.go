package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-manga-pdf/pkg/asset"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"github.com/shouni/go-manga-pdf/pkg/publisher"
)

// MangaPanelImageRunner は、プランを元にパネル単位の並列画像生成を管理します。
type MangaPanelImageRunner struct {
	generator PanelsImageGenerator
	assets    *publisher.AssetManager
}

// NewMangaPanelImageRunner は、依存関係を注入して初期化します。
func NewMangaPanelImageRunner(gen PanelsImageGenerator, assets *publisher.AssetManager) *MangaPanelImageRunner {
	return &MangaPanelImageRunner{
		generator: gen,
		assets:    assets,
	}
}

// Run は、プランを受け取り、全パネルの画像を生成するのだ。
func (r *MangaPanelImageRunner) Run(ctx context.Context, plan *domain.MangaPlan) ([][]*gemini.ImageResponse, error) {
	slog.InfoContext(ctx, "Starting parallel panel generation", "panels", plan.TotalPanels())

	images, err := r.generator.Execute(ctx, plan)
	if err != nil {
		slog.ErrorContext(ctx, "Panel generation pipeline failed", "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "Successfully generated panels", "pages", len(images))
	return images, nil
}

// RunAndSave はパネル画像を生成して page_N_panels/panel_ID.jpg に保存し、
// 組版前のページ成果物をプラン順で返します。
func (r *MangaPanelImageRunner) RunAndSave(ctx context.Context, plan *domain.MangaPlan, outputDir string) ([]domain.PageArtifact, error) {
	images, err := r.Run(ctx, plan)
	if err != nil {
		return nil, err
	}
	if len(images) != len(plan.Pages) {
		return nil, fmt.Errorf("生成されたページの数(%d)とプランのページ数(%d)が一致しません", len(images), len(plan.Pages))
	}

	pages := make([]domain.PageArtifact, len(plan.Pages))
	for pi, page := range plan.Pages {
		if len(images[pi]) != len(page.Panels) {
			return nil, fmt.Errorf("第 %d ページ: 生成された画像の数(%d)とパネルの数(%d)が一致しません",
				page.PageNumber, len(images[pi]), len(page.Panels))
		}

		artifact := domain.PageArtifact{PageNumber: page.PageNumber, Panels: make([]domain.PanelArtifact, len(page.Panels))}
		for qi, panel := range page.Panels {
			path, err := asset.PanelPath(outputDir, page.PageNumber, panel.ID)
			if err != nil {
				return nil, fmt.Errorf("パネルの出力パス生成に失敗しました: %w", err)
			}

			data, err := r.assets.SaveImage(ctx, path, images[pi][qi].Data)
			if err != nil {
				return nil, fmt.Errorf("第 %d ページ パネル %d の保存に失敗しました (path: %s): %w", page.PageNumber, panel.ID, path, err)
			}

			artifact.Panels[qi] = domain.PanelArtifact{
				PageNumber: page.PageNumber,
				PanelID:    panel.ID,
				Path:       path,
				Data:       data,
				MIMEType:   "image/jpeg",
			}
		}
		pages[pi] = artifact
		slog.InfoContext(ctx, "パネル画像を保存しました", "page_number", page.PageNumber, "panels", len(page.Panels))
	}
	return pages, nil
}
