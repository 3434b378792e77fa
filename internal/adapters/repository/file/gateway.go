package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Gateway はディレクトリ配下にキーごとの JSON ファイルを置く state.Gateway の実装です。
type Gateway struct {
	dir string
	mu  sync.RWMutex
}

// NewGateway は dir を保存先とする Gateway を生成します。dir が無ければ作成します。
func NewGateway(dir string) (*Gateway, error) {
	if dir == "" {
		return nil, fmt.Errorf("file: directory must be set")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file: create %s: %w", dir, err)
	}
	return &Gateway{dir: dir}, nil
}

// Load はキーのファイルを読み込みます。
func (g *Gateway) Load(ctx context.Context, key string) ([]byte, bool, error) {
	path, err := g.pathFor(key)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("file: read %s: %w", path, err)
	}
	return blob, true, nil
}

// Save は一時ファイルへ書き込んだ後に rename で置き換えます。
func (g *Gateway) Save(ctx context.Context, key string, blob []byte) error {
	path, err := g.pathFor(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	tmp, err := os.CreateTemp(g.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("file: create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("file: write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file: sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("file: replace %s: %w", path, err)
	}
	return nil
}

func (g *Gateway) pathFor(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("file: invalid key %q", key)
	}
	return filepath.Join(g.dir, key+".json"), nil
}
