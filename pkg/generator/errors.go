package generator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPrompt はストーリーのプロンプトが空の場合に返されます。
var ErrEmptyPrompt = errors.New("story prompt is empty")

// UnitError は1つの生成単位（ページまたはパネル）が最終的に失敗したことを表します。
// ページモードでは PanelID は 0 です。
type UnitError struct {
	PageNumber int
	PanelID    int
	Err        error
}

func (e *UnitError) Error() string {
	if e.PanelID > 0 {
		return fmt.Sprintf("page %d panel %d: 画像の生成に失敗しました: %v", e.PageNumber, e.PanelID, e.Err)
	}
	return fmt.Sprintf("page %d: 画像の生成に失敗しました: %v", e.PageNumber, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// CharacterDesignError は1人以上のキャラクターの参照画像生成に失敗したことを表します。
type CharacterDesignError struct {
	Failed []string
	Err    error
}

func (e *CharacterDesignError) Error() string {
	return fmt.Sprintf("%d 人のキャラクターデザインに失敗しました (%s): %v",
		len(e.Failed), strings.Join(e.Failed, ", "), e.Err)
}

func (e *CharacterDesignError) Unwrap() error { return e.Err }
