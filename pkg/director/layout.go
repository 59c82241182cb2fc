package director

import (
	"fmt"
	"image"
	"math"
)

// supportedAspects は画像生成モデルが受け付けるアスペクト比です。
var supportedAspects = []struct {
	label string
	w, h  float64
}{
	{"1:1", 1, 1},
	{"2:3", 2, 3},
	{"3:2", 3, 2},
	{"3:4", 3, 4},
	{"4:3", 4, 3},
	{"4:5", 4, 5},
	{"5:4", 5, 4},
	{"9:16", 9, 16},
	{"16:9", 16, 9},
}

// A4 相当のキャンバス寸法（300dpi）と余白
const (
	PageWidth     = 2480
	PageHeight    = 3508
	PageMargin    = 40
	GridColumns   = 2
	PageDPI       = 100.0
	PageAspect    = "3:4"
	SheetAspect   = "16:9"
	pointsPerInch = 72.0
)

// LayoutManager はページ上のパネル配置（グリッド）を管理します。
type LayoutManager struct {
	Width   int
	Height  int
	Margin  int
	Columns int
}

// NewLayoutManager は A4 キャンバス・2列グリッドの既定レイアウトを返します。
func NewLayoutManager() *LayoutManager {
	return &LayoutManager{
		Width:   PageWidth,
		Height:  PageHeight,
		Margin:  PageMargin,
		Columns: GridColumns,
	}
}

// Rows は n 枚のパネルを並べるのに必要な行数を返します。
func (l *LayoutManager) Rows(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + l.Columns - 1) / l.Columns
}

// CellSize は n 枚のパネルを並べたときの1セルの幅と高さを返します。
func (l *LayoutManager) CellSize(n int) (int, int) {
	rows := l.Rows(n)
	if rows == 0 {
		return 0, 0
	}
	w := (l.Width - l.Margin*(l.Columns+1)) / l.Columns
	h := (l.Height - l.Margin*(rows+1)) / rows
	return w, h
}

// Cells は n 枚のパネルを左上から行優先で並べたときの各セルの矩形を返します。
func (l *LayoutManager) Cells(n int) ([]image.Rectangle, error) {
	if n <= 0 {
		return nil, fmt.Errorf("パネル数は1以上である必要があります: %d", n)
	}
	w, h := l.CellSize(n)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("パネル %d 枚はキャンバス %dx%d に収まりません", n, l.Width, l.Height)
	}

	cells := make([]image.Rectangle, n)
	for i := range cells {
		row, col := i/l.Columns, i%l.Columns
		x := l.Margin + col*(w+l.Margin)
		y := l.Margin + row*(h+l.Margin)
		cells[i] = image.Rect(x, y, x+w, y+h)
	}
	return cells, nil
}

// PointsAt は画素数を指定 dpi での PDF ポイントに換算します。
func PointsAt(pixels int, dpi float64) float64 {
	return float64(pixels) / dpi * pointsPerInch
}

// PanelAspect は n 枚並べたときのセル形状に最も近いアスペクト比を返します。
func (l *LayoutManager) PanelAspect(n int) string {
	w, h := l.CellSize(n)
	return ClosestAspect(w, h)
}

// ClosestAspect は幅と高さの比に最も近いサポート済みアスペクト比を返します。
func ClosestAspect(width, height int) string {
	if width <= 0 || height <= 0 {
		return "1:1"
	}
	target := math.Log(float64(width) / float64(height))
	best, bestDiff := "1:1", math.Inf(1)
	for _, a := range supportedAspects {
		if d := math.Abs(math.Log(a.w/a.h) - target); d < bestDiff {
			best, bestDiff = a.label, d
		}
	}
	return best
}
