package publisher

import (
	"fmt"
	"image"

	"github.com/shouni/go-manga-pdf/pkg/director"
	"github.com/shouni/go-manga-pdf/pkg/imgutil"
	"golang.org/x/image/draw"
)

// Compositor はパネル画像をグリッドに並べて1ページの画像にします。
type Compositor struct {
	layout *director.LayoutManager
}

// NewCompositor は Compositor を生成します。layout が nil の場合は既定のレイアウトを使います。
func NewCompositor(layout *director.LayoutManager) *Compositor {
	if layout == nil {
		layout = director.NewLayoutManager()
	}
	return &Compositor{layout: layout}
}

// Compose は白いキャンバスにパネルを左上から行優先で配置します。
// 各パネルはセルの大きさにリサイズされます。
func (c *Compositor) Compose(panels []image.Image) (*image.RGBA, error) {
	cells, err := c.layout.Cells(len(panels))
	if err != nil {
		return nil, err
	}

	canvas := imgutil.NewCanvas(c.layout.Width, c.layout.Height)
	for i, panel := range panels {
		if panel == nil {
			return nil, fmt.Errorf("パネル %d の画像がありません", i+1)
		}
		cell := cells[i]
		resized := imgutil.Resize(panel, cell.Dx(), cell.Dy())
		draw.Draw(canvas, cell, resized, image.Point{}, draw.Over)
	}
	return canvas, nil
}
