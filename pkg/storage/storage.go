package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFileName は出力ディレクトリの排他に使うロックファイル名です。
const lockFileName = ".manga.lock"

// ErrOutputLocked は出力ディレクトリが別の実行に使用されている場合に返されます。
var ErrOutputLocked = errors.New("output directory is locked by another run")

// OutputWriter は成果物を書き出す契約です。
type OutputWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// InputReader は成果物を読み出す契約です。
type InputReader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// LocalStore はローカルファイルシステムへの読み書きを担います。
// 書き込みは同じディレクトリの一時ファイルに書いてから rename するため、
// 途中で失敗しても書き込み先に壊れたファイルは残りません。
type LocalStore struct {
	perm os.FileMode
}

// NewLocalStore は LocalStore を生成します。
func NewLocalStore() *LocalStore {
	return &LocalStore{perm: 0o644}
}

// Write は r の内容を path にアトミックに書き込みます。
func (s *LocalStore) Write(ctx context.Context, path string, r io.Reader, _ string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ディレクトリの作成に失敗しました (path: %s): %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return fmt.Errorf("書き込みに失敗しました (path: %s): %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("同期に失敗しました (path: %s): %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("クローズに失敗しました (path: %s): %w", path, err)
	}
	if err = os.Chmod(tmpName, s.perm); err != nil {
		return fmt.Errorf("権限の設定に失敗しました (path: %s): %w", path, err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("ファイルの確定に失敗しました (path: %s): %w", path, err)
	}
	return nil
}

// Open は path のファイルを開きます。
func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ファイルを開けませんでした (path: %s): %w", path, err)
	}
	return f, nil
}

// ReadAll は InputReader から path の内容をすべて読み出します。
func ReadAll(ctx context.Context, r InputReader, path string) ([]byte, error) {
	rc, err := r.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// LockDir は出力ディレクトリを作成し、プロセス間の排他ロックを取得します。
// 返された関数でロックを解放します。
func LockDir(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("出力ディレクトリの作成に失敗しました (path: %s): %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("出力ディレクトリのロックに失敗しました (path: %s): %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, dir)
	}
	return lock.Unlock, nil
}
