package domain

import (
	"fmt"
	"strings"
)

// Character はプランに登場するキャラクターの定義なのだ。
type Character struct {
	Name       string `json:"name"`
	VisualDesc string `json:"visual_desc"` // 作画プロンプトに注入する外見上の特徴
}

// fileNameSanitizer はファイル名として使用できない文字を置換します。
var fileNameSanitizer = strings.NewReplacer(
	" ", "_",
	"/", "_",
	`\`, "_",
	":", "_",
	"*", "_",
	"?", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// String はキャラクターの情報を文字列で返すのだ。
func (c Character) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.VisualDesc)
}

// FileStem は参照画像の保存に使うファイル名（拡張子なし）を返すのだ。
// 空白はアンダースコアに置き換えられます。
func (c Character) FileStem() string {
	return fileNameSanitizer.Replace(strings.TrimSpace(c.Name))
}
