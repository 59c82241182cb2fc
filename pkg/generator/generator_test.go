package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-manga-pdf/pkg/domain"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
	"github.com/shouni/go-manga-pdf/pkg/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const plannerJSON = `{
  "characters": [{"name": "Mochi Cat", "visual_desc": "white cat, red scarf"}],
  "pages": [
    {"page_number": 1, "layout_desc": "three rows", "panels": [
      {"id": 1, "description": "wake", "visual_prompt": "Mochi Cat wakes up", "dialogue": ""}
    ]}
  ]
}`

func TestPlanner_Plan(t *testing.T) {
	pb, err := prompts.NewTextPromptBuilder()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("スキーマ指定で呼び出し検証済みのプランを返すのだ", func(t *testing.T) {
		fake := newFakeModel(func(string, int) (*gemini.Response, error) {
			return &gemini.Response{Text: plannerJSON}, nil
		})
		plan, err := NewPlanner(fake, pb, "planner-model", 0.7).Plan(ctx, "A cat discovering magic powers")
		require.NoError(t, err)

		assert.Len(t, plan.Pages, 1)
		require.Equal(t, 1, fake.callCount())
		call := fake.calls[0]
		assert.Equal(t, "planner-model", call.model)
		assert.Equal(t, gemini.MIMETypeJSON, call.opts.ResponseMIMEType)
		assert.NotNil(t, call.opts.ResponseSchema)
		assert.Contains(t, call.opts.SystemPrompt, "Manga Editor")
		require.NotNil(t, call.opts.Temperature)
		assert.InDelta(t, 0.7, *call.opts.Temperature, 1e-6)
	})

	t.Run("不正な応答は再試行せず ErrInvalidPlan なのだ", func(t *testing.T) {
		fake := newFakeModel(func(string, int) (*gemini.Response, error) {
			return &gemini.Response{Text: `{"pages": "oops"}`}, nil
		})
		_, err := NewPlanner(fake, pb, "m", 0.7).Plan(ctx, "story")
		assert.ErrorIs(t, err, domain.ErrInvalidPlan)
		assert.Equal(t, 1, fake.callCount())
	})

	t.Run("空のプロンプトはリモート呼び出し前にエラーなのだ", func(t *testing.T) {
		fake := newFakeModel(nil)
		_, err := NewPlanner(fake, pb, "m", 0.7).Plan(ctx, "  \n ")
		assert.ErrorIs(t, err, ErrEmptyPrompt)
		assert.Zero(t, fake.callCount())
	})

	t.Run("通信エラーはそのまま致命的エラーになるのだ", func(t *testing.T) {
		fake := newFakeModel(func(string, int) (*gemini.Response, error) {
			return nil, errTransient
		})
		_, err := NewPlanner(fake, pb, "m", 0.7).Plan(ctx, "story")
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 1, fake.callCount())
	})
}

func TestRetryPolicy_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("一時的な失敗の後に成功するのだ", func(t *testing.T) {
		calls := 0
		err := fastRetry(3).Do(ctx, "unit", func(context.Context) error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("再試行回数を使い切ると最後のエラーを返すのだ", func(t *testing.T) {
		calls := 0
		err := fastRetry(3).Do(ctx, "unit", func(context.Context) error {
			calls++
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 4, calls)
	})

	t.Run("4xx のAPIエラーは再試行しないのだ", func(t *testing.T) {
		calls := 0
		err := fastRetry(3).Do(ctx, "unit", func(context.Context) error {
			calls++
			return genai.APIError{Code: 400, Message: "bad request"}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("キャンセルされたら即座に止まるのだ", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := fastRetry(5).Do(cctx, "unit", func(context.Context) error {
			calls++
			cancel()
			return errTransient
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestPanelGenerator_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("結果はプラン順に並ぶのだ", func(t *testing.T) {
		fake := newFakeModel(nil)
		plan := testPlan()

		images, err := NewPanelGenerator(newTestComposer(fake, nil)).Execute(ctx, plan)
		require.NoError(t, err)

		require.Len(t, images, 2)
		assert.Equal(t, 8, fake.callCount())
		for pi, page := range plan.Pages {
			require.Len(t, images[pi], 4)
			for qi, panel := range page.Panels {
				assert.True(t, strings.HasPrefix(string(images[pi][qi].Data), panel.VisualPrompt),
					"page %d panel %d", page.PageNumber, panel.ID)
			}
		}
		assert.Equal(t, "2:3", fake.calls[0].opts.AspectRatio)
		assert.Equal(t, []string{gemini.ModalityImage, gemini.ModalityText}, fake.calls[0].opts.ResponseModalities)
		assert.Nil(t, fake.calls[0].opts.Temperature, "画像生成にはプランナーの温度を使わないのだ")
	})

	t.Run("同時に処理するパネル数は MaxConcurrency を超えないのだ", func(t *testing.T) {
		gate := newGateModel(20 * time.Millisecond)

		images, err := NewPanelGenerator(newTestComposer(gate, nil)).Execute(ctx, testPlan())
		require.NoError(t, err)
		require.Len(t, images, 2)

		peak, calls, _, inFlight := gate.stats()
		assert.Equal(t, 8, calls)
		assert.LessOrEqual(t, peak, 3)
		assert.Greater(t, peak, 1)
		assert.Zero(t, inFlight)
	})

	t.Run("1つのパネルが失敗すると処理中の呼び出しは取り消されるのだ", func(t *testing.T) {
		gate := newGateModel(0)
		gate.failPrefix = "scene p1-1"
		gate.failAfter = 2

		type result struct {
			images [][]*gemini.ImageResponse
			err    error
		}
		done := make(chan result, 1)
		go func() {
			images, err := NewPanelGenerator(newTestComposer(gate, nil)).Execute(ctx, testPlan())
			done <- result{images, err}
		}()

		var res result
		select {
		case res = <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("失敗後も生成が止まらなかったのだ")
		}

		assert.Nil(t, res.images)
		var unitErr *UnitError
		require.ErrorAs(t, res.err, &unitErr)
		assert.Equal(t, 1, unitErr.PageNumber)
		assert.Equal(t, 1, unitErr.PanelID)
		assert.NotErrorIs(t, res.err, context.Canceled)

		peak, calls, canceled, inFlight := gate.stats()
		assert.GreaterOrEqual(t, canceled, 2)
		assert.LessOrEqual(t, peak, 3)
		assert.Less(t, calls, 8*3, "取り消し後に再試行していないのだ")
		assert.Zero(t, inFlight)
	})

	t.Run("呼び出し元のキャンセルで全体が止まるのだ", func(t *testing.T) {
		gate := newGateModel(0)
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			_, err := NewPanelGenerator(newTestComposer(gate, nil)).Execute(cctx, testPlan())
			done <- err
		}()

		for i := 0; i < 3; i++ {
			select {
			case <-gate.blocked:
			case <-time.After(5 * time.Second):
				t.Fatal("パネル生成が始まらなかったのだ")
			}
		}
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("キャンセル後も生成が止まらなかったのだ")
		}
		_, _, _, inFlight := gate.stats()
		assert.Zero(t, inFlight)
	})

	t.Run("一時的な失敗は再試行で回復するのだ", func(t *testing.T) {
		fake := newFakeModel(func(text string, attempt int) (*gemini.Response, error) {
			if strings.HasPrefix(text, "scene p2-3") && attempt < 3 {
				return nil, errTransient
			}
			return imageResponse([]byte(text)), nil
		})

		_, err := NewPanelGenerator(newTestComposer(fake, nil)).Execute(ctx, testPlan())
		require.NoError(t, err)
		assert.Len(t, fake.callsContaining("scene p2-3"), 3)
	})

	t.Run("画像が返らない応答も再試行するのだ", func(t *testing.T) {
		fake := newFakeModel(func(text string, attempt int) (*gemini.Response, error) {
			if attempt == 1 {
				return &gemini.Response{Text: "sorry", RawResponse: &genai.GenerateContentResponse{}}, nil
			}
			return imageResponse([]byte(text)), nil
		})

		_, err := NewPanelGenerator(newTestComposer(fake, nil)).Execute(ctx, testPlan())
		require.NoError(t, err)
		assert.Equal(t, 16, fake.callCount())
	})

	t.Run("再試行を使い切るとページを示すエラーになるのだ", func(t *testing.T) {
		fake := newFakeModel(func(text string, attempt int) (*gemini.Response, error) {
			if strings.HasPrefix(text, "scene p2-2") {
				return nil, errTransient
			}
			return imageResponse([]byte(text)), nil
		})

		images, err := NewPanelGenerator(newTestComposer(fake, nil)).Execute(ctx, testPlan())
		require.Error(t, err)
		assert.Nil(t, images)

		var unitErr *UnitError
		require.ErrorAs(t, err, &unitErr)
		assert.Equal(t, 2, unitErr.PageNumber)
		assert.Equal(t, 2, unitErr.PanelID)
		assert.ErrorIs(t, err, errTransient)
		assert.Contains(t, err.Error(), "page 2")
		assert.Len(t, fake.callsContaining("scene p2-2"), 3)
	})

	t.Run("登場するキャラクターの参照画像だけを添付するのだ", func(t *testing.T) {
		refs := NewReferenceStore(nil)
		refs.Put(domain.CharacterReference{Name: "Mochi Cat", Data: pngBytes(t, 4, 4), MIMEType: "image/png"})
		refs.Put(domain.CharacterReference{Name: "Old Wizard", Data: pngBytes(t, 5, 5), MIMEType: "image/png"})

		fake := newFakeModel(nil)
		_, err := NewPanelGenerator(newTestComposer(fake, refs)).Execute(ctx, testPlan())
		require.NoError(t, err)

		named := fake.callsContaining("scene p1-1 with Mochi Cat")
		require.Len(t, named, 1)
		require.Len(t, named[0].parts, 2)
		assert.Contains(t, named[0].text, "character reference sheets for Mochi Cat.")
		assert.Equal(t, "image/png", named[0].parts[1].InlineData.MIMEType)

		// 名前が出てこないパネルには全員分を添付する
		anonymous := fake.callsContaining("scene p1-2")
		require.Len(t, anonymous, 1)
		assert.Len(t, anonymous[0].parts, 3)
		assert.Contains(t, anonymous[0].text, "Mochi Cat, Old Wizard")
	})
}

func TestPageGenerator_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("ページごとに1回呼び出しプラン順で返すのだ", func(t *testing.T) {
		plan := &domain.MangaPlan{}
		for p := 1; p <= 3; p++ {
			plan.Pages = append(plan.Pages, domain.Page{
				PageNumber: p,
				LayoutDesc: "layout-" + string(rune('0'+p)),
				Panels:     []domain.Panel{{ID: 1, VisualPrompt: "vp"}},
			})
		}

		fake := newFakeModel(nil)
		images, err := NewPageGenerator(newTestComposer(fake, nil)).Execute(ctx, plan)
		require.NoError(t, err)

		assert.Equal(t, 3, fake.callCount())
		require.Len(t, images, 3)
		for i, img := range images {
			assert.Contains(t, string(img.Data), plan.Pages[i].LayoutDesc)
		}
		assert.Equal(t, "3:4", fake.calls[0].opts.AspectRatio)
	})

	t.Run("失敗したページ番号がエラーに含まれるのだ", func(t *testing.T) {
		plan := &domain.MangaPlan{Pages: []domain.Page{
			{PageNumber: 1, LayoutDesc: "ok", Panels: []domain.Panel{{ID: 1, VisualPrompt: "vp"}}},
			{PageNumber: 2, LayoutDesc: "broken", Panels: []domain.Panel{{ID: 1, VisualPrompt: "vp"}}},
		}}
		fake := newFakeModel(func(text string, _ int) (*gemini.Response, error) {
			if strings.Contains(text, "broken") {
				return nil, genai.APIError{Code: 403, Message: "forbidden"}
			}
			return imageResponse([]byte(text)), nil
		})

		_, err := NewPageGenerator(newTestComposer(fake, nil)).Execute(ctx, plan)
		var unitErr *UnitError
		require.ErrorAs(t, err, &unitErr)
		assert.Equal(t, 2, unitErr.PageNumber)
		assert.Zero(t, unitErr.PanelID)
	})
}

func TestCharacterDesigner_Execute(t *testing.T) {
	ctx := context.Background()
	chars := testPlan().Characters

	t.Run("キャラクターごとに1枚ずつ宣言順で返すのだ", func(t *testing.T) {
		fake := newFakeModel(nil)
		images, err := NewCharacterDesigner(newTestComposer(fake, nil)).Execute(ctx, chars)
		require.NoError(t, err)

		require.Len(t, images, 2)
		assert.Contains(t, string(images[0].Data), "Mochi Cat")
		assert.Contains(t, string(images[1].Data), "Old Wizard")
		assert.Equal(t, "16:9", fake.calls[0].opts.AspectRatio)
	})

	t.Run("失敗は他のキャラクターを止めずにまとめて報告するのだ", func(t *testing.T) {
		fake := newFakeModel(func(text string, _ int) (*gemini.Response, error) {
			if strings.Contains(text, "Old Wizard") {
				return nil, errTransient
			}
			return imageResponse([]byte(text)), nil
		})

		images, err := NewCharacterDesigner(newTestComposer(fake, nil)).Execute(ctx, chars)
		assert.Nil(t, images)

		var designErr *CharacterDesignError
		require.True(t, errors.As(err, &designErr))
		assert.Equal(t, []string{"Old Wizard"}, designErr.Failed)
		assert.ErrorIs(t, err, errTransient)
		assert.Len(t, fake.callsContaining("Mochi Cat"), 1)
		assert.Len(t, fake.callsContaining("Old Wizard"), 3)
	})
}

func TestReferenceStore(t *testing.T) {
	ctx := context.Background()

	t.Run("名前は大文字小文字を区別せず引けるのだ", func(t *testing.T) {
		s := NewReferenceStore(nil)
		data := pngBytes(t, 2, 2)
		s.Put(domain.CharacterReference{Name: "Mochi Cat", Path: "x.jpg", Data: data})

		ref, err := s.Get(ctx, "mochi cat")
		require.NoError(t, err)
		assert.Equal(t, "Mochi Cat", ref.Name)
		assert.Equal(t, data, ref.Data)
		assert.Equal(t, 1, s.Len())

		_, err = s.Get(ctx, "nobody")
		assert.Error(t, err)
	})

	t.Run("キャッシュに無いデータは読み込み元から取得するのだ", func(t *testing.T) {
		data := pngBytes(t, 3, 3)
		reader := &mapReader{files: map[string][]byte{"refs/Mochi_Cat.jpg": data}}
		s := NewReferenceStore(reader)
		s.Put(domain.CharacterReference{Name: "Mochi Cat", Path: "refs/Mochi_Cat.jpg"})

		refs, err := s.Resolve(ctx, []domain.Character{{Name: "Mochi Cat"}, {Name: "Unknown"}})
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, data, refs[0].Data)

		_, err = s.Get(ctx, "Mochi Cat")
		require.NoError(t, err)
		assert.Equal(t, 1, reader.opens)
	})
}
