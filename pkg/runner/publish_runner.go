package runner

import (
	"context"

	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/publisher"
)

// DefaultPublisherRunner は pkg/publisher を利用した標準実装なのだ。
type DefaultPublisherRunner struct {
	publisher *publisher.MangaPublisher
}

func NewDefaultPublisherRunner(pub *publisher.MangaPublisher) *DefaultPublisherRunner {
	return &DefaultPublisherRunner{publisher: pub}
}

func (pr *DefaultPublisherRunner) Run(ctx context.Context, plan *domain.MangaPlan, pages []domain.PageArtifact, outputDir string) (publisher.PublishResult, error) {
	return pr.publisher.Publish(ctx, plan, pages, publisher.Options{OutputDir: outputDir})
}
