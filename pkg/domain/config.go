package domain

import (
	"fmt"
	"strings"
)

// GenerationMode は画像生成の単位（パネルごと / ページごと）です。
type GenerationMode string

// CharacterRefMode はキャラクターの一貫性をどう保つかを表します。
type CharacterRefMode string

// ColorMode は作画の色指定です。
type ColorMode string

const (
	ModePanel GenerationMode = "panel"
	ModePage  GenerationMode = "page"

	CharRefText  CharacterRefMode = "text"
	CharRefImage CharacterRefMode = "image"

	ColorMonochrome ColorMode = "monochrome"
	ColorFull       ColorMode = "color"
)

// MangaConfig は1回の実行に適用される不変の設定値なのだ。
// 実行開始時に一度だけ組み立て、各工程へ値として渡します。
type MangaConfig struct {
	Mode    GenerationMode
	CharRef CharacterRefMode
	Color   ColorMode
}

// DefaultMangaConfig はパネル生成・テキスト参照・モノクロの既定値を返すのだ。
func DefaultMangaConfig() MangaConfig {
	return MangaConfig{
		Mode:    ModePanel,
		CharRef: CharRefText,
		Color:   ColorMonochrome,
	}
}

// NewMangaConfig はフラグ文字列から設定を組み立て、不正な値を拒否します。
func NewMangaConfig(mode, charRef string, color bool) (MangaConfig, error) {
	m, err := ParseGenerationMode(mode)
	if err != nil {
		return MangaConfig{}, err
	}
	c, err := ParseCharacterRefMode(charRef)
	if err != nil {
		return MangaConfig{}, err
	}
	cfg := MangaConfig{Mode: m, CharRef: c, Color: ColorMonochrome}
	if color {
		cfg.Color = ColorFull
	}
	return cfg, nil
}

// ParseGenerationMode は "panel" または "page" を受け付けます。
func ParseGenerationMode(s string) (GenerationMode, error) {
	switch GenerationMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePanel:
		return ModePanel, nil
	case ModePage:
		return ModePage, nil
	}
	return "", fmt.Errorf("不明な生成モードです: %q (panel または page を指定してください)", s)
}

// ParseCharacterRefMode は "text" または "image" を受け付けます。
func ParseCharacterRefMode(s string) (CharacterRefMode, error) {
	switch CharacterRefMode(strings.ToLower(strings.TrimSpace(s))) {
	case CharRefText:
		return CharRefText, nil
	case CharRefImage:
		return CharRefImage, nil
	}
	return "", fmt.Errorf("不明なキャラクター参照モードです: %q (text または image を指定してください)", s)
}

// Validate は列挙値がすべて既知の値であることを確認します。
func (c MangaConfig) Validate() error {
	if _, err := ParseGenerationMode(string(c.Mode)); err != nil {
		return err
	}
	if _, err := ParseCharacterRefMode(string(c.CharRef)); err != nil {
		return err
	}
	if c.Color != ColorMonochrome && c.Color != ColorFull {
		return fmt.Errorf("不明なカラーモードです: %q", c.Color)
	}
	return nil
}

// UsesCharacterImages は参照画像を生成・添付するモードかどうかを返します。
func (c MangaConfig) UsesCharacterImages() bool {
	return c.CharRef == CharRefImage
}

// IsColor はカラー作画かどうかを返します。
func (c MangaConfig) IsColor() bool {
	return c.Color == ColorFull
}

func (c MangaConfig) String() string {
	return fmt.Sprintf("mode=%s char_ref=%s color=%s", c.Mode, c.CharRef, c.Color)
}
