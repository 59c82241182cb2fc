package workflow

import (
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/generator"
	"github.com/shouni/go-manga-pdf/pkg/prompts"
)

// buildMangaComposer は、1回の実行で共有する MangaComposer を初期化します。
// 参照画像ストアは実行ごとに新しく作成します。
func (m *Manager) buildMangaComposer(mc domain.MangaConfig) *generator.MangaComposer {
	return generator.NewMangaComposer(
		m.aiClient,
		prompts.NewImagePromptBuilder(mc.Color),
		m.limiter,
		generator.RetryPolicy{
			MaxRetries:      m.cfg.MaxRetries,
			InitialInterval: m.cfg.RetryInitialInterval,
			MaxInterval:     m.cfg.RetryMaxInterval,
		},
		m.cfg.ImageModel,
		m.cfg.MaxConcurrency,
		generator.NewReferenceStore(m.reader),
	)
}
