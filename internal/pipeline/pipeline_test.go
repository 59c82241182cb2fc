package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shouni/go-manga-pdf/internal/config"
	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"github.com/shouni/go-manga-pdf/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const onePagePlan = `{"characters": [{"name": "Mochi Cat", "visual_desc": "white cat"}],
"pages": [{"page_number": 1, "layout_desc": "two rows", "panels": [
{"id": 1, "description": "d", "visual_prompt": "Mochi Cat wakes", "dialogue": ""},
{"id": 2, "description": "d", "visual_prompt": "Mochi Cat jumps", "dialogue": "Nya!"}]}]}`

// stubModel はプラン要求には固定の JSON を、画像要求には PNG を返すのだ。
type stubModel struct {
	png []byte
}

func newStubModel(t *testing.T) *stubModel {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 30, 40))))
	return &stubModel{png: buf.Bytes()}
}

func (s *stubModel) GenerateContent(ctx context.Context, model, prompt string, opts gemini.GenerateOptions) (*gemini.Response, error) {
	return s.GenerateWithParts(ctx, model, []*genai.Part{{Text: prompt}}, opts)
}

func (s *stubModel) GenerateWithParts(_ context.Context, _ string, _ []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	if opts.ResponseMIMEType == gemini.MIMETypeJSON {
		return &gemini.Response{Text: onePagePlan}, nil
	}
	return &gemini.Response{RawResponse: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: s.png}},
		}}}},
	}}, nil
}

func testConfig(t *testing.T, opts config.GenerateOptions) *config.Config {
	t.Helper()
	cfg := config.LoadConfig()
	cfg.GeminiAPIKey = "test-key"
	cfg.OutputDir = t.TempDir()
	opts.MaxRetries = -1
	cfg.ApplyOptions(opts)
	return cfg
}

func TestExecute(t *testing.T) {
	t.Run("ページモードで PDF まで生成し要約を出力するのだ", func(t *testing.T) {
		cfg := testConfig(t, config.GenerateOptions{Prompt: "A cat discovering magic powers", Mode: "page"})

		var out bytes.Buffer
		require.NoError(t, execute(context.Background(), cfg, newStubModel(t), &out))

		assert.FileExists(t, filepath.Join(cfg.OutputDir, "manga.pdf"))
		assert.FileExists(t, filepath.Join(cfg.OutputDir, "manga_plan.json"))
		assert.Contains(t, out.String(), "DONE")
		assert.Contains(t, out.String(), "manga.pdf")
	})

	t.Run("plan-only ではプランだけを保存するのだ", func(t *testing.T) {
		cfg := testConfig(t, config.GenerateOptions{Prompt: "A cat discovering magic powers", PlanOnly: true})

		var out bytes.Buffer
		require.NoError(t, execute(context.Background(), cfg, newStubModel(t), &out))

		assert.FileExists(t, filepath.Join(cfg.OutputDir, "manga_plan.json"))
		assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "manga.pdf"))
	})

	t.Run("入力が無ければリモート呼び出し前にエラーなのだ", func(t *testing.T) {
		cfg := testConfig(t, config.GenerateOptions{})

		var out bytes.Buffer
		err := execute(context.Background(), cfg, newStubModel(t), &out)
		assert.ErrorIs(t, err, workflow.ErrNoInput)
		assert.Empty(t, out.String())
	})

	t.Run("APIキーが無ければ実行しないのだ", func(t *testing.T) {
		cfg := testConfig(t, config.GenerateOptions{Prompt: "story"})
		cfg.GeminiAPIKey = ""

		err := execute(context.Background(), cfg, newStubModel(t), &bytes.Buffer{})
		assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	})
}

func TestBuildRequest(t *testing.T) {
	t.Run("プランファイル指定はそのまま渡されるのだ", func(t *testing.T) {
		planPath := filepath.Join(t.TempDir(), "plan.json")
		require.NoError(t, os.WriteFile(planPath, []byte(onePagePlan), 0o644))
		cfg := testConfig(t, config.GenerateOptions{PlanFile: planPath, CharRef: "image", Color: true})

		req, err := buildRequest(cfg)
		require.NoError(t, err)
		assert.Empty(t, req.Prompt)
		assert.Equal(t, planPath, req.PlanPath)
		assert.Equal(t, cfg.OutputDir, req.OutputDir)
		assert.Equal(t, domain.MangaConfig{Mode: domain.ModePanel, CharRef: domain.CharRefImage, Color: domain.ColorFull}, req.Manga)
	})

	t.Run("不正なモードはエラーなのだ", func(t *testing.T) {
		cfg := testConfig(t, config.GenerateOptions{Prompt: "x", CharRef: "photo"})
		_, err := buildRequest(cfg)
		assert.Error(t, err)
	})
}

func TestRenderSummary(t *testing.T) {
	t.Run("確定した成果物と未確定の項目を表示するのだ", func(t *testing.T) {
		plan, err := domain.ParsePlan([]byte(onePagePlan))
		require.NoError(t, err)

		got := renderSummary(&workflow.RunResult{
			RunID:    "run-1",
			State:    workflow.StateFailed,
			Plan:     plan,
			PlanPath: "out/manga_plan.json",
			Duration: 1500 * time.Millisecond,
		})

		assert.Contains(t, got, "run-1")
		assert.Contains(t, got, "FAILED")
		assert.Contains(t, got, "out/manga_plan.json")
		assert.Contains(t, got, "1.5s")
		assert.Contains(t, got, "╭")
		assert.Contains(t, got, "-")
	})
}
