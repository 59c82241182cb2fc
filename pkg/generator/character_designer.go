package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-manga-pdf/pkg/director"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"golang.org/x/sync/errgroup"
)

// CharacterDesigner はキャラクターごとの参照シートを並列で生成します。
type CharacterDesigner struct {
	composer *MangaComposer
}

// NewCharacterDesigner は CharacterDesigner の新しいインスタンスを初期化します。
func NewCharacterDesigner(composer *MangaComposer) *CharacterDesigner {
	return &CharacterDesigner{composer: composer}
}

// Execute は全キャラクターの参照シートを生成し、宣言順で返します。
// 1人の失敗で他のキャラクターを中断せず、全員を試行したうえで失敗をまとめて CharacterDesignError として返します。
func (cd *CharacterDesigner) Execute(ctx context.Context, chars []domain.Character) ([]*gemini.ImageResponse, error) {
	images := make([]*gemini.ImageResponse, len(chars))
	errs := make([]error, len(chars))

	var eg errgroup.Group
	eg.SetLimit(cd.composer.MaxConcurrency)

	for i, char := range chars {
		eg.Go(func() error {
			logger := slog.With("character", char.Name, "character_index", i+1)
			logger.Info("Starting character design")
			start := time.Now()

			resp, err := cd.composer.generateImage(ctx, imageRequest{
				label:       "character " + char.Name,
				prompt:      cd.composer.PromptBuilder.BuildCharacterSheet(char),
				aspectRatio: director.SheetAspect,
			}, logger)
			if err != nil {
				logger.Error("Character design failed", "error", err)
				errs[i] = fmt.Errorf("キャラクター %q: %w", char.Name, err)
				return nil
			}

			logger.Info("Character design completed", "duration", time.Since(start).Round(time.Millisecond))
			images[i] = resp
			return nil
		})
	}
	_ = eg.Wait()

	var failed []string
	for i, err := range errs {
		if err != nil {
			failed = append(failed, chars[i].Name)
		}
	}
	if len(failed) > 0 {
		return nil, &CharacterDesignError{Failed: failed, Err: errors.Join(errs...)}
	}
	return images, nil
}
