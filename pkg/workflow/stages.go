package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-manga-pdf/pkg/domain"
)

// Stage は実行の1工程です。Enabled が false の工程は状態遷移ごと飛ばします。
type Stage struct {
	Kind    State
	Enabled func(req RunRequest) bool
	Run     func(ctx context.Context, rc *runContext) error
}

// runContext は工程間で受け渡す実行中の状態です。
type runContext struct {
	req     RunRequest
	script  ScriptRunner
	images  *ImageRunners
	publish PublishRunner
	result  *RunResult
}

func always(RunRequest) bool { return true }

func imageStagesEnabled(req RunRequest) bool { return !req.PlanOnly }

// defaultStages は固定順の工程一覧を返します。
func defaultStages() []Stage {
	return []Stage{
		{
			Kind:    StatePlanning,
			Enabled: always,
			Run:     runPlanning,
		},
		{
			Kind: StateCharacterDesign,
			Enabled: func(req RunRequest) bool {
				return imageStagesEnabled(req) && req.Manga.UsesCharacterImages()
			},
			Run: runCharacterDesign,
		},
		{
			Kind:    StateImageGeneration,
			Enabled: imageStagesEnabled,
			Run:     runImageGeneration,
		},
		{
			Kind:    StateAssembly,
			Enabled: imageStagesEnabled,
			Run:     runAssembly,
		},
	}
}

// runPlanning はプランを生成して保存するか、保存済みのプランを読み込みます。
func runPlanning(ctx context.Context, rc *runContext) error {
	if rc.req.PlanPath != "" {
		plan, err := rc.script.Load(ctx, rc.req.PlanPath)
		if err != nil {
			return err
		}
		rc.result.Plan, rc.result.PlanPath = plan, rc.req.PlanPath
		return nil
	}

	plan, path, err := rc.script.RunAndSave(ctx, rc.req.Prompt, rc.req.OutputDir)
	if err != nil {
		return err
	}
	rc.result.Plan, rc.result.PlanPath = plan, path
	return nil
}

func runCharacterDesign(ctx context.Context, rc *runContext) error {
	refs, err := rc.images.Design.Run(ctx, rc.result.Plan, rc.req.OutputDir)
	if err != nil {
		return err
	}
	if len(refs) != len(rc.result.Plan.Characters) {
		return fmt.Errorf("参照画像の数(%d)がキャラクターの数(%d)と一致しません", len(refs), len(rc.result.Plan.Characters))
	}
	rc.result.CharacterRefs = refs
	return nil
}

func runImageGeneration(ctx context.Context, rc *runContext) error {
	var (
		pages []domain.PageArtifact
		err   error
	)
	switch rc.req.Manga.Mode {
	case domain.ModePage:
		pages, err = rc.images.Page.RunAndSave(ctx, rc.result.Plan, rc.req.OutputDir)
	default:
		pages, err = rc.images.Panel.RunAndSave(ctx, rc.result.Plan, rc.req.OutputDir)
	}
	if err != nil {
		return err
	}
	rc.result.Pages = pages
	return nil
}

func runAssembly(ctx context.Context, rc *runContext) error {
	res, err := rc.publish.Run(ctx, rc.result.Plan, rc.result.Pages, rc.req.OutputDir)
	if err != nil {
		return err
	}
	rc.result.Pages = res.Pages
	rc.result.Document = res.Document
	return nil
}
