package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-manga-pdf/pkg/asset"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/publisher"
)

// MangaPageImageRunner は、ページ単位で漫画ページ画像を生成して保存します。
type MangaPageImageRunner struct {
	generator PagesImageGenerator
	assets    *publisher.AssetManager
}

// NewMangaPageImageRunner は、依存関係を注入して初期化します。
func NewMangaPageImageRunner(gen PagesImageGenerator, assets *publisher.AssetManager) *MangaPageImageRunner {
	return &MangaPageImageRunner{
		generator: gen,
		assets:    assets,
	}
}

// RunAndSave はページ画像を生成して page_N.jpg に保存し、プラン順で返します。
func (r *MangaPageImageRunner) RunAndSave(ctx context.Context, plan *domain.MangaPlan, outputDir string) ([]domain.PageArtifact, error) {
	slog.InfoContext(ctx, "Starting page generation", "pages", len(plan.Pages))

	images, err := r.generator.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}
	if len(images) != len(plan.Pages) {
		return nil, fmt.Errorf("生成された画像の数(%d)とページの数(%d)が一致しません", len(images), len(plan.Pages))
	}

	pages := make([]domain.PageArtifact, len(plan.Pages))
	for i, page := range plan.Pages {
		path, err := asset.PagePath(outputDir, page.PageNumber)
		if err != nil {
			return nil, fmt.Errorf("ページの出力パス生成に失敗しました: %w", err)
		}

		data, err := r.assets.SaveImage(ctx, path, images[i].Data)
		if err != nil {
			return nil, fmt.Errorf("第 %d ページの保存に失敗しました (path: %s): %w", page.PageNumber, path, err)
		}

		pages[i] = domain.PageArtifact{PageNumber: page.PageNumber, Path: path, Data: data, MIMEType: "image/jpeg"}
		slog.InfoContext(ctx, "ページ画像を保存しました", "page_number", page.PageNumber, "path", path)
	}
	return pages, nil
}
