package publisher

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shouni/go-manga-pdf/pkg/director"
	"github.com/shouni/go-manga-pdf/pkg/imgutil"
)

const (
	pdfCreator     = "go-manga-pdf"
	pdfOrientation = "P"
	pdfUnit        = "pt"
)

// pdfPage は PDF に載せる1ページ分の画像です。
type pdfPage struct {
	pageNumber int
	img        image.Image
}

// renderPDF はページ画像を1ページ1枚の全面配置で PDF に書き出します。
// ページサイズは画像の画素数を director.PageDPI で換算したものです。
func renderPDF(w io.Writer, pages []pdfPage, quality int) error {
	if len(pages) == 0 {
		return fmt.Errorf("PDFに含めるページがありません")
	}

	first := pages[0].img.Bounds()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: pdfOrientation,
		UnitStr:        pdfUnit,
		Size:           pageSize(first),
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(pdfCreator, true)

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	for _, page := range pages {
		jpg, err := imgutil.EncodeJPEG(page.img, quality)
		if err != nil {
			return &AssemblyError{PageNumber: page.pageNumber, Err: err}
		}

		size := pageSize(page.img.Bounds())
		name := fmt.Sprintf("page_%d", page.pageNumber)

		pdf.AddPageFormat(pdfOrientation, size)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(jpg))
		pdf.ImageOptions(name, 0, 0, size.Wd, size.Ht, false, opts, 0, "")
		if pdf.Err() {
			return &AssemblyError{PageNumber: page.pageNumber, Err: pdf.Error()}
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("PDFの出力に失敗しました: %w", err)
	}
	return nil
}

func pageSize(r image.Rectangle) fpdf.SizeType {
	return fpdf.SizeType{
		Wd: director.PointsAt(r.Dx(), director.PageDPI),
		Ht: director.PointsAt(r.Dy(), director.PageDPI),
	}
}
