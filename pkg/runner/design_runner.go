package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-manga-pdf/pkg/asset"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/publisher"
)

// MangaDesignRunner はキャラクター参照シートを生成して保存し、後続の工程に登録します。
type MangaDesignRunner struct {
	generator CharacterSheetGenerator
	assets    *publisher.AssetManager
	registry  ReferenceRegistry
}

// NewMangaDesignRunner は依存関係を注入して初期化します。
func NewMangaDesignRunner(gen CharacterSheetGenerator, assets *publisher.AssetManager, registry ReferenceRegistry) *MangaDesignRunner {
	return &MangaDesignRunner{
		generator: gen,
		assets:    assets,
		registry:  registry,
	}
}

// Run はプランの全キャラクターについて参照シートを1枚ずつ生成し、character_refs/ に保存するのだ。
// 1人でも失敗した場合は何も登録せずにエラーを返します。
func (dr *MangaDesignRunner) Run(ctx context.Context, plan *domain.MangaPlan, outputDir string) ([]domain.CharacterReference, error) {
	if len(plan.Characters) == 0 {
		slog.InfoContext(ctx, "DesignRunner: No characters declared, skipping")
		return nil, nil
	}

	slog.InfoContext(ctx, "DesignRunner: Generating character sheets", "characters", len(plan.Characters))
	images, err := dr.generator.Execute(ctx, plan.Characters)
	if err != nil {
		return nil, err
	}
	if len(images) != len(plan.Characters) {
		return nil, fmt.Errorf("生成された参照画像の数(%d)とキャラクターの数(%d)が一致しません", len(images), len(plan.Characters))
	}

	refs := make([]domain.CharacterReference, len(plan.Characters))
	for i, char := range plan.Characters {
		path := asset.CharacterRefPath(outputDir, char)
		data, err := dr.assets.SaveImage(ctx, path, images[i].Data)
		if err != nil {
			return nil, fmt.Errorf("キャラクター %q の参照画像の保存に失敗しました: %w", char.Name, err)
		}
		refs[i] = domain.CharacterReference{Name: char.Name, Path: path, Data: data, MIMEType: "image/jpeg"}
		slog.InfoContext(ctx, "DesignRunner: Character sheet saved", "character", char.Name, "path", path)
	}

	for _, ref := range refs {
		dr.registry.Put(ref)
	}
	return refs, nil
}
