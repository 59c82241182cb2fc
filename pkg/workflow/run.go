package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/go-manga-pdf/pkg/config"
	"github.com/shouni/go-manga-pdf/pkg/generator"
	"github.com/shouni/go-manga-pdf/pkg/storage"
)

// Execute は工程一覧を順に実行し、漫画の PDF を生成するのだ。
// 工程が失敗すると状態を FAILED にして StageError を返します。結果には失敗までに確定した成果物が入ります。
func (m *Manager) Execute(ctx context.Context, req RunRequest) (*RunResult, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &RunResult{RunID: uuid.NewString(), OutputDir: req.OutputDir}
	logger := slog.With("run_id", result.RunID)

	unlock, err := storage.LockDir(req.OutputDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("出力ディレクトリのロック解放に失敗しました", "error", err)
		}
	}()

	rc, err := m.newRunContext(req, result)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Run started",
		"output_dir", req.OutputDir,
		"manga", req.Manga.String(),
		"plan_only", req.PlanOnly,
		"from_plan", req.PlanPath != "",
	)

	sm := newStateMachine()
	finish := func() {
		result.State = sm.current
		result.History = append([]State(nil), sm.history...)
		result.Duration = time.Since(start)
	}

	for _, stage := range defaultStages() {
		if !stage.Enabled(req) {
			continue
		}
		if err := sm.transition(stage.Kind); err != nil {
			sm.fail()
			finish()
			return result, err
		}

		stageStart := time.Now()
		logger.InfoContext(ctx, "Stage started", "stage", stage.Kind)
		if err := stage.Run(ctx, rc); err != nil {
			logger.ErrorContext(ctx, "Stage failed", "stage", stage.Kind, "error", err)
			sm.fail()
			finish()
			return result, &StageError{Stage: stage.Kind, Err: err}
		}
		logger.InfoContext(ctx, "Stage completed", "stage", stage.Kind, "duration", time.Since(stageStart).Round(time.Millisecond))
	}

	if err := sm.transition(StateDone); err != nil {
		sm.fail()
		finish()
		return result, err
	}
	finish()

	logger.InfoContext(ctx, "Run completed",
		"pages", len(result.Pages),
		"document", result.Document.Path,
		"duration", result.Duration.Round(time.Millisecond),
	)
	return result, nil
}

// newRunContext は実行に必要な Runner 群を構築します。
func (m *Manager) newRunContext(req RunRequest, result *RunResult) (*runContext, error) {
	script, err := m.BuildScriptRunner()
	if err != nil {
		return nil, fmt.Errorf("ScriptRunner の構築に失敗しました: %w", err)
	}
	images, err := m.BuildImageRunners(req.Manga)
	if err != nil {
		return nil, fmt.Errorf("画像生成 Runner の構築に失敗しました: %w", err)
	}
	publish, err := m.BuildPublishRunner()
	if err != nil {
		return nil, fmt.Errorf("PublishRunner の構築に失敗しました: %w", err)
	}
	return &runContext{req: req, script: script, images: images, publish: publish, result: result}, nil
}

// normalizeRequest はリモート呼び出しの前に入力を検証し、既定値を補います。
func normalizeRequest(req RunRequest) (RunRequest, error) {
	if err := req.Manga.Validate(); err != nil {
		return req, err
	}

	hasPrompt := strings.TrimSpace(req.Prompt) != ""
	hasPlan := strings.TrimSpace(req.PlanPath) != ""
	switch {
	case hasPrompt && hasPlan:
		return req, ErrConflictingInput
	case hasPlan && req.PlanOnly:
		return req, fmt.Errorf("プランファイルを指定した場合は plan-only にできません: %w", ErrConflictingInput)
	case !hasPrompt && !hasPlan:
		if req.Prompt != "" {
			return req, generator.ErrEmptyPrompt
		}
		return req, ErrNoInput
	}

	if strings.TrimSpace(req.OutputDir) == "" {
		req.OutputDir = config.DefaultOutputDir
	}
	return req, nil
}
