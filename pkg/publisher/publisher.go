package publisher

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/shouni/go-manga-pdf/pkg/asset"
	"github.com/shouni/go-manga-pdf/pkg/director"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/imgutil"
	"github.com/shouni/go-manga-pdf/pkg/storage"
)

const mimeTypePDF = "application/pdf"

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
}

// PublishResult はパブリッシュ処理で確定したページと PDF の情報です。
type PublishResult struct {
	Pages    []domain.PageArtifact
	Document domain.MangaDocument
}

// MangaPublisher はページ画像の組版と PDF の出力を担います。
type MangaPublisher struct {
	writer     storage.OutputWriter
	compositor *Compositor
	assets     *AssetManager
	quality    int
}

// NewMangaPublisher は MangaPublisher を生成します。
func NewMangaPublisher(writer storage.OutputWriter, layout *director.LayoutManager) *MangaPublisher {
	return &MangaPublisher{
		writer:     writer,
		compositor: NewCompositor(layout),
		assets:     NewAssetManager(writer),
		quality:    imgutil.DefaultJPEGQuality,
	}
}

// Publish はページ成果物を検証し、必要なページを組版して PDF を書き出すのだ。
// ページ数の不一致やデコードできない画像がある場合は何も書き込まずに AssemblyError を返します。
// パネルモードのページは組版後に page_N.jpg として保存します。
func (p *MangaPublisher) Publish(ctx context.Context, plan *domain.MangaPlan, pages []domain.PageArtifact, opts Options) (PublishResult, error) {
	result := PublishResult{}
	start := time.Now()

	decoded, err := p.assemble(plan, pages)
	if err != nil {
		return result, err
	}

	// 1. 組版したページの保存
	result.Pages = make([]domain.PageArtifact, len(pages))
	for i, page := range pages {
		if page.HasImage() {
			result.Pages[i] = page
			continue
		}

		path, err := asset.PagePath(opts.OutputDir, page.PageNumber)
		if err != nil {
			return result, &AssemblyError{PageNumber: page.PageNumber, Err: err}
		}
		jpg, err := imgutil.EncodeJPEG(decoded[i].img, p.quality)
		if err != nil {
			return result, &AssemblyError{PageNumber: page.PageNumber, Err: err}
		}
		if err := p.writer.Write(ctx, path, bytes.NewReader(jpg), mimeTypeJPEG); err != nil {
			return result, fmt.Errorf("第 %d ページの保存に失敗しました (path: %s): %w", page.PageNumber, path, err)
		}

		page.Path, page.Data, page.MIMEType = path, jpg, mimeTypeJPEG
		result.Pages[i] = page
		slog.Info("Page composed", "page_number", page.PageNumber, "panels", len(page.Panels), "path", path)
	}

	// 2. PDF の生成と書き出し
	var buf bytes.Buffer
	if err := renderPDF(&buf, decoded, p.quality); err != nil {
		return result, err
	}

	docPath := asset.DocumentPath(opts.OutputDir)
	if err := p.writer.Write(ctx, docPath, &buf, mimeTypePDF); err != nil {
		return result, &AssemblyError{Err: fmt.Errorf("PDFの書き込みに失敗しました (path: %s): %w", docPath, err)}
	}

	result.Document = domain.MangaDocument{Path: docPath, PageCount: len(decoded)}
	slog.Info("PDF published",
		"path", docPath,
		"pages", len(decoded),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

// assemble はページ数と順序を検証し、全ページを画像としてデコードします。
// パネルモードのページはここでグリッドに組版します。
func (p *MangaPublisher) assemble(plan *domain.MangaPlan, pages []domain.PageArtifact) ([]pdfPage, error) {
	if plan == nil {
		return nil, &AssemblyError{Err: fmt.Errorf("プランがありません")}
	}
	if len(pages) != len(plan.Pages) {
		return nil, &AssemblyError{Err: fmt.Errorf("%w: got %d, want %d", ErrPageCountMismatch, len(pages), len(plan.Pages))}
	}

	numbers := plan.PageNumbers()
	decoded := make([]pdfPage, len(pages))
	for i, page := range pages {
		if page.PageNumber != numbers[i] {
			return nil, &AssemblyError{
				PageNumber: numbers[i],
				Err:        fmt.Errorf("%w: position %d holds page %d", ErrPageCountMismatch, i+1, page.PageNumber),
			}
		}

		img, err := p.pageImage(page, plan.Pages[i])
		if err != nil {
			return nil, &AssemblyError{PageNumber: page.PageNumber, Err: err}
		}
		decoded[i] = pdfPage{pageNumber: page.PageNumber, img: img}
	}
	return decoded, nil
}

// pageImage はページ画像をデコードします。ページ画像が無い場合はパネルから組版します。
func (p *MangaPublisher) pageImage(page domain.PageArtifact, want domain.Page) (image.Image, error) {
	if page.HasImage() {
		return imgutil.Decode(page.Data)
	}

	if len(page.Panels) == 0 {
		return nil, fmt.Errorf("ページ画像もパネル画像もありません")
	}
	ids := domain.Panels(want.Panels).IDs()
	if len(page.Panels) != len(ids) {
		return nil, fmt.Errorf("%w: panels got %d, want %d", ErrPageCountMismatch, len(page.Panels), len(ids))
	}

	panels := make([]image.Image, len(page.Panels))
	for i, panel := range page.Panels {
		if panel.PanelID != ids[i] {
			return nil, fmt.Errorf("%w: position %d holds panel %d", ErrPageCountMismatch, i+1, panel.PanelID)
		}
		img, err := imgutil.Decode(panel.Data)
		if err != nil {
			return nil, fmt.Errorf("パネル %d: %w", panel.PanelID, err)
		}
		panels[i] = img
	}
	return p.compositor.Compose(panels)
}
