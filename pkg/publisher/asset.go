package publisher

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shouni/go-manga-pdf/pkg/imgutil"
	"github.com/shouni/go-manga-pdf/pkg/storage"
)

const mimeTypeJPEG = "image/jpeg"

// AssetManager は生成画像を JPEG に揃えて保存します。
type AssetManager struct {
	writer  storage.OutputWriter
	quality int
}

// NewAssetManager は AssetManager を生成します。
func NewAssetManager(writer storage.OutputWriter) *AssetManager {
	return &AssetManager{
		writer:  writer,
		quality: imgutil.DefaultJPEGQuality,
	}
}

// SaveImage は画像データを JPEG に変換して path に保存し、保存したバイト列を返します。
func (am *AssetManager) SaveImage(ctx context.Context, path string, data []byte) ([]byte, error) {
	jpg, err := imgutil.CompressToJPEG(data, am.quality)
	if err != nil {
		return nil, fmt.Errorf("asset_manager: 画像の変換に失敗しました (path: %s): %w", path, err)
	}
	if err := am.writer.Write(ctx, path, bytes.NewReader(jpg), mimeTypeJPEG); err != nil {
		return nil, fmt.Errorf("asset_manager: 画像の保存に失敗しました: %w", err)
	}
	return jpg, nil
}
