package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInput はプロンプトとプランファイルのどちらも指定されていない場合に返されます。
	ErrNoInput = errors.New("either a prompt or a plan file is required")
	// ErrConflictingInput はプロンプトとプランファイルが両方指定された場合に返されます。
	ErrConflictingInput = errors.New("prompt and plan file are mutually exclusive")
)

// StageError はどの工程で実行が失敗したかを表します。
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
