package runner

import (
	"context"

	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
)

// PlanGenerator はストーリーから検証済みのプランを生成します。
type PlanGenerator interface {
	Plan(ctx context.Context, story string) (*domain.MangaPlan, error)
}

// CharacterSheetGenerator はキャラクターごとの参照シートを宣言順で生成します。
type CharacterSheetGenerator interface {
	Execute(ctx context.Context, chars []domain.Character) ([]*gemini.ImageResponse, error)
}

// PanelsImageGenerator はプランの全パネルを [ページ][パネル] の順で生成します。
type PanelsImageGenerator interface {
	Execute(ctx context.Context, plan *domain.MangaPlan) ([][]*gemini.ImageResponse, error)
}

// PagesImageGenerator はプランの全ページをページ順で生成します。
type PagesImageGenerator interface {
	Execute(ctx context.Context, plan *domain.MangaPlan) ([]*gemini.ImageResponse, error)
}

// ReferenceRegistry は生成したキャラクター参照画像を後続の工程へ引き渡す登録先です。
type ReferenceRegistry interface {
	Put(ref domain.CharacterReference)
}
