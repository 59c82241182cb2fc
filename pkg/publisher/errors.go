package publisher

import (
	"errors"
	"fmt"
)

// ErrPageCountMismatch はページ画像の数がプランのページ数と一致しない場合に返されます。
var ErrPageCountMismatch = errors.New("page count does not match plan")

// AssemblyError は組版または PDF 出力の失敗を表します。
// PageNumber が 0 の場合は特定のページに起因しない失敗です。
type AssemblyError struct {
	PageNumber int
	Err        error
}

func (e *AssemblyError) Error() string {
	if e.PageNumber > 0 {
		return fmt.Sprintf("page %d: 組版に失敗しました: %v", e.PageNumber, e.Err)
	}
	return fmt.Sprintf("組版に失敗しました: %v", e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }
