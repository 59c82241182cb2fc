package workflow

import (
	"context"

	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/publisher"
)

// Workflow は、漫画生成ワークフローの各工程を担当する Runner を構築するためのインターフェースを定義します。
type Workflow interface {
	BuildScriptRunner() (ScriptRunner, error)
	BuildImageRunners(mc domain.MangaConfig) (*ImageRunners, error)
	BuildPublishRunner() (PublishRunner, error)
}

// ScriptRunner は、ストーリーから漫画のプランを生成・保存し、保存済みのプランを読み込む責務を持ちます。
type ScriptRunner interface {
	Run(ctx context.Context, story string) (*domain.MangaPlan, error)
	RunAndSave(ctx context.Context, story, outputDir string) (*domain.MangaPlan, string, error)
	Load(ctx context.Context, planPath string) (*domain.MangaPlan, error)
}

// DesignRunner は、キャラクターごとの参照シートを生成して保存する責務を持ちます。
type DesignRunner interface {
	Run(ctx context.Context, plan *domain.MangaPlan, outputDir string) ([]domain.CharacterReference, error)
}

// PanelImageRunner は、パネル単位で画像を生成して保存する責務を持ちます。
type PanelImageRunner interface {
	RunAndSave(ctx context.Context, plan *domain.MangaPlan, outputDir string) ([]domain.PageArtifact, error)
}

// PageImageRunner は、ページ単位で画像を生成して保存する責務を持ちます。
type PageImageRunner interface {
	RunAndSave(ctx context.Context, plan *domain.MangaPlan, outputDir string) ([]domain.PageArtifact, error)
}

// PublishRunner は、ページ画像を組版して PDF として出力する責務を持ちます。
type PublishRunner interface {
	Run(ctx context.Context, plan *domain.MangaPlan, pages []domain.PageArtifact, outputDir string) (publisher.PublishResult, error)
}
