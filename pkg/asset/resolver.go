package asset

import (
	"fmt"
	"path/filepath"

	"github.com/shouni/go-utils/urlpath"

	"github.com/shouni/go-manga-pdf/pkg/domain"
)

const (
	// DefaultPlanFileName は保存する漫画プランの JSON ファイル名です。
	DefaultPlanFileName = "manga_plan.json"
	// CharacterRefDir はキャラクター参照画像を格納するディレクトリ名です。
	CharacterRefDir = "character_refs"
	// DefaultPageFileName はページ画像の共通のベースファイル名です。
	DefaultPageFileName = "page.jpg"
	// DefaultPanelFileName はパネル画像の共通のベースファイル名です。
	DefaultPanelFileName = "panel.jpg"
	// DefaultDocumentName は最終的な PDF のファイル名です。
	DefaultDocumentName = "manga.pdf"
	// ImageExtension は保存する画像の拡張子です。
	ImageExtension = ".jpg"
)

// PlanPath はプランファイルのパスを返します。
func PlanPath(outputDir string) string {
	return filepath.Join(outputDir, DefaultPlanFileName)
}

// DocumentPath は PDF のパスを返します。
func DocumentPath(outputDir string) string {
	return filepath.Join(outputDir, DefaultDocumentName)
}

// CharacterRefPath はキャラクター参照画像のパスを返します。
// 例: "Mochi Cat" -> output/character_refs/Mochi_Cat.jpg
func CharacterRefPath(outputDir string, char domain.Character) string {
	return filepath.Join(outputDir, CharacterRefDir, char.FileStem()+ImageExtension)
}

// PagePath はページ画像のパスを返します。例: output/page_3.jpg
func PagePath(outputDir string, pageNumber int) (string, error) {
	return GenerateIndexedPath(filepath.Join(outputDir, DefaultPageFileName), pageNumber)
}

// PanelDir はページごとのパネル画像ディレクトリを返します。例: output/page_3_panels
func PanelDir(outputDir string, pageNumber int) string {
	return filepath.Join(outputDir, fmt.Sprintf("page_%d_panels", pageNumber))
}

// PanelPath はパネル画像のパスを返します。例: output/page_3_panels/panel_2.jpg
func PanelPath(outputDir string, pageNumber, panelID int) (string, error) {
	return GenerateIndexedPath(filepath.Join(PanelDir(outputDir, pageNumber), DefaultPanelFileName), panelID)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "path/to/image.jpg", 1 -> "path/to/image_1.jpg"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	if index < 1 {
		return "", fmt.Errorf("インデックスは1以上である必要があります: %d", index)
	}
	return urlpath.GenerateIndexedPath(basePath, index)
}
