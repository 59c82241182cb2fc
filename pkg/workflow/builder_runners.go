package workflow

import (
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/generator"
	"github.com/shouni/go-manga-pdf/pkg/publisher"
	"github.com/shouni/go-manga-pdf/pkg/runner"
)

// BuildScriptRunner は、プラン生成を担当する Runner を作成します。
func (m *Manager) BuildScriptRunner() (ScriptRunner, error) {
	planner := generator.NewPlanner(m.aiClient, m.scriptPrompt, m.cfg.PlannerModel, m.cfg.PlannerTemperature)
	return runner.NewMangaScriptRunner(planner, m.writer, m.reader), nil
}

// BuildImageRunners は、キャラクターデザインとパネル・ページ画像生成を担当する Runner を作成します。
// 3つの Runner は同じ MangaComposer を共有するため、デザイン工程で登録した参照画像が画像生成工程で使われます。
func (m *Manager) BuildImageRunners(mc domain.MangaConfig) (*ImageRunners, error) {
	if err := mc.Validate(); err != nil {
		return nil, err
	}

	composer := m.buildMangaComposer(mc)
	assets := publisher.NewAssetManager(m.writer)

	return &ImageRunners{
		Design: runner.NewMangaDesignRunner(generator.NewCharacterDesigner(composer), assets, composer.References),
		Panel:  runner.NewMangaPanelImageRunner(generator.NewPanelGenerator(composer), assets),
		Page:   runner.NewMangaPageImageRunner(generator.NewPageGenerator(composer), assets),
	}, nil
}

// BuildPublishRunner は、成果物のパブリッシュを担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() (PublishRunner, error) {
	pub := publisher.NewMangaPublisher(m.writer, nil)
	return runner.NewDefaultPublisherRunner(pub), nil
}
