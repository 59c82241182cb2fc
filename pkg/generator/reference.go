package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/storage"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 15 * time.Minute
)

// ReferenceStore はキャラクター参照画像を名前で引けるように保持します。
// 画像データは有効期限付きでメモリにキャッシュし、期限切れ後は保存先から読み直します。
type ReferenceStore struct {
	reader    storage.InputReader
	cache     *cache.Cache
	mu        sync.RWMutex
	entries   map[string]domain.CharacterReference // 小文字の名前 -> 参照（Data なし）
	order     []string
	loadGroup singleflight.Group
}

// NewReferenceStore は ReferenceStore を生成します。reader は期限切れデータの再読み込みに使います。
func NewReferenceStore(reader storage.InputReader) *ReferenceStore {
	return &ReferenceStore{
		reader:  reader,
		cache:   cache.New(defaultCacheExpiration, cacheCleanupInterval),
		entries: make(map[string]domain.CharacterReference),
	}
}

func referenceKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Put は参照画像を登録します。同名の参照は上書きされます。
func (s *ReferenceStore) Put(ref domain.CharacterReference) {
	key := referenceKey(ref.Name)

	s.mu.Lock()
	if _, ok := s.entries[key]; !ok {
		s.order = append(s.order, key)
	}
	meta := ref
	meta.Data = nil
	s.entries[key] = meta
	s.mu.Unlock()

	if len(ref.Data) > 0 {
		s.cache.Set(key, ref.Data, cache.DefaultExpiration)
	}
}

// Len は登録済みの参照画像の数を返します。
func (s *ReferenceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Has は指定した名前の参照画像が登録済みかどうかを返します。
func (s *ReferenceStore) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[referenceKey(name)]
	return ok
}

// Get は名前から参照画像を取得します。
func (s *ReferenceStore) Get(ctx context.Context, name string) (domain.CharacterReference, error) {
	key := referenceKey(name)

	s.mu.RLock()
	meta, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return domain.CharacterReference{}, fmt.Errorf("キャラクター %q の参照画像は登録されていません", name)
	}

	data, err := s.load(ctx, key, meta.Path)
	if err != nil {
		return domain.CharacterReference{}, err
	}
	meta.Data = data
	return meta, nil
}

// Resolve は指定したキャラクターのうち登録済みのものの参照画像を宣言順で返します。
func (s *ReferenceStore) Resolve(ctx context.Context, chars []domain.Character) ([]domain.CharacterReference, error) {
	refs := make([]domain.CharacterReference, 0, len(chars))
	for _, c := range chars {
		if !s.Has(c.Name) {
			continue
		}
		ref, err := s.Get(ctx, c.Name)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// All は登録順にすべての参照画像を返します。
func (s *ReferenceStore) All(ctx context.Context) ([]domain.CharacterReference, error) {
	s.mu.RLock()
	keys := append([]string(nil), s.order...)
	s.mu.RUnlock()

	refs := make([]domain.CharacterReference, 0, len(keys))
	for _, key := range keys {
		ref, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// load はキャッシュから画像データを取得し、無ければ保存先から読み込みます。
func (s *ReferenceStore) load(ctx context.Context, key, path string) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		return data.([]byte), nil
	}

	val, err, _ := s.loadGroup.Do(key, func() (interface{}, error) {
		// singleflight で待機中に他のゴルーチンが読み込みを完了させている可能性がある
		if data, ok := s.cache.Get(key); ok {
			return data, nil
		}
		if s.reader == nil || path == "" {
			return nil, fmt.Errorf("参照画像 %q のデータがキャッシュに無く、読み込み元もありません", key)
		}

		data, err := storage.ReadAll(ctx, s.reader, path)
		if err != nil {
			return nil, fmt.Errorf("参照画像の読み込みに失敗しました (path: %s): %w", path, err)
		}
		if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
			return nil, fmt.Errorf("参照画像が画像ではありません (path: %s, type: %s)", path, ct)
		}
		s.cache.Set(key, data, cache.DefaultExpiration)
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	data, ok := val.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	return data, nil
}
