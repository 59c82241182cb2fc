package generator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"github.com/shouni/go-manga-pdf/pkg/prompts"
	"google.golang.org/genai"
)

// recordedCall は fakeModel が受け取った1回分のリクエストです。
type recordedCall struct {
	model string
	text  string
	parts []*genai.Part
	opts  gemini.GenerateOptions
}

// fakeModel は gemini.GenerativeModel のテスト用実装なのだ。
// respond が nil の場合、プロンプト文字列をそのまま画像データとして返します。
type fakeModel struct {
	mu      sync.Mutex
	calls   []recordedCall
	respond func(text string, attempt int) (*gemini.Response, error)
	counts  map[string]int
}

func newFakeModel(respond func(text string, attempt int) (*gemini.Response, error)) *fakeModel {
	return &fakeModel{respond: respond, counts: make(map[string]int)}
}

func (f *fakeModel) GenerateContent(ctx context.Context, model string, prompt string, opts gemini.GenerateOptions) (*gemini.Response, error) {
	return f.GenerateWithParts(ctx, model, []*genai.Part{{Text: prompt}}, opts)
}

func (f *fakeModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := parts[0].Text

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{model: model, text: text, parts: parts, opts: opts})
	f.counts[text]++
	attempt := f.counts[text]
	f.mu.Unlock()

	if f.respond != nil {
		return f.respond(text, attempt)
	}
	return imageResponse([]byte(text)), nil
}

func (f *fakeModel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeModel) callsContaining(substr string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if strings.Contains(c.text, substr) {
			out = append(out, c)
		}
	}
	return out
}

func imageResponse(data []byte) *gemini.Response {
	return &gemini.Response{RawResponse: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}},
			}},
		}},
	}}
}

var errTransient = errors.New("temporary upstream failure")

// gateModel は同時に処理中の呼び出し数を記録するテスト用モデルなのだ。
// hold が 0 の場合、呼び出しはコンテキストが終わるまで戻りません。
// failPrefix に一致するプロンプトは、failAfter 件の呼び出しが止まるのを待ってから再試行不能なエラーを返します。
type gateModel struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    int
	canceled int

	hold       time.Duration
	failPrefix string
	failAfter  int
	blocked    chan struct{}
}

func newGateModel(hold time.Duration) *gateModel {
	return &gateModel{hold: hold, blocked: make(chan struct{}, 64)}
}

func (g *gateModel) GenerateContent(ctx context.Context, model string, prompt string, opts gemini.GenerateOptions) (*gemini.Response, error) {
	return g.GenerateWithParts(ctx, model, []*genai.Part{{Text: prompt}}, opts)
}

func (g *gateModel) GenerateWithParts(ctx context.Context, _ string, parts []*genai.Part, _ gemini.GenerateOptions) (*gemini.Response, error) {
	text := parts[0].Text

	g.mu.Lock()
	g.calls++
	g.inFlight++
	if g.inFlight > g.peak {
		g.peak = g.inFlight
	}
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.inFlight--
		g.mu.Unlock()
	}()

	if g.failPrefix != "" && strings.HasPrefix(text, g.failPrefix) {
		for i := 0; i < g.failAfter; i++ {
			select {
			case <-g.blocked:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return nil, genai.APIError{Code: 400, Message: "bad request"}
	}

	if g.hold > 0 {
		select {
		case <-time.After(g.hold):
			return imageResponse([]byte(text)), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	select {
	case g.blocked <- struct{}{}:
	default:
	}
	<-ctx.Done()
	g.mu.Lock()
	g.canceled++
	g.mu.Unlock()
	return nil, ctx.Err()
}

func (g *gateModel) stats() (peak, calls, canceled, inFlight int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.peak, g.calls, g.canceled, g.inFlight
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func fastRetry(maxRetries int) RetryPolicy {
	return RetryPolicy{MaxRetries: maxRetries, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func newTestComposer(client gemini.GenerativeModel, refs *ReferenceStore) *MangaComposer {
	return NewMangaComposer(
		client,
		prompts.NewImagePromptBuilder(domain.ColorMonochrome),
		nil,
		fastRetry(2),
		"image-model",
		3,
		refs,
	)
}

// testPlan は2ページ×4パネル、キャラクター2人のプランを返します。
func testPlan() *domain.MangaPlan {
	plan := &domain.MangaPlan{
		Characters: []domain.Character{
			{Name: "Mochi Cat", VisualDesc: "white cat, red scarf"},
			{Name: "Old Wizard", VisualDesc: "grey beard, starry robe"},
		},
	}
	for p := 1; p <= 2; p++ {
		page := domain.Page{PageNumber: p, LayoutDesc: "grid"}
		for id := 1; id <= 4; id++ {
			vp := "scene p" + string(rune('0'+p)) + "-" + string(rune('0'+id))
			if id == 1 {
				vp += " with Mochi Cat"
			}
			page.Panels = append(page.Panels, domain.Panel{ID: id, Description: "d", VisualPrompt: vp})
		}
		plan.Pages = append(plan.Pages, page)
	}
	return plan
}

// mapReader はメモリ上のファイルを返す storage.InputReader です。
type mapReader struct {
	mu    sync.Mutex
	files map[string][]byte
	opens int
}

func (r *mapReader) Open(_ context.Context, path string) (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opens++
	data, ok := r.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
