package gemini

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// pngHeader は http.DetectContentType が image/png と判定する最小のシグネチャです。
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestExtractImage(t *testing.T) {
	t.Run("テキストの後ろにある画像パートを取り出すのだ", func(t *testing.T) {
		resp := &Response{RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "here you go"},
					{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("fake")}},
				}},
				FinishReason: genai.FinishReasonStop,
			}},
		}}

		img, err := ExtractImage(resp)
		require.NoError(t, err)
		assert.Equal(t, []byte("fake"), img.Data)
		assert.Equal(t, "image/png", img.MimeType)
	})

	t.Run("MIMEタイプが空ならデータから判定するのだ", func(t *testing.T) {
		resp := &Response{RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{Data: pngHeader}}}},
			}},
		}}

		img, err := ExtractImage(resp)
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MimeType)
	})

	t.Run("候補が無ければ ErrNoImageData なのだ", func(t *testing.T) {
		_, err := ExtractImage(&Response{RawResponse: &genai.GenerateContentResponse{}})
		assert.ErrorIs(t, err, ErrNoImageData)

		_, err = ExtractImage(nil)
		assert.ErrorIs(t, err, ErrNoImageData)
	})

	t.Run("安全性で止まった場合は理由を含めるのだ", func(t *testing.T) {
		resp := &Response{RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}}

		_, err := ExtractImage(resp)
		require.ErrorIs(t, err, ErrNoImageData)
		assert.Contains(t, err.Error(), "SAFETY")
	})
}

func TestImagePart(t *testing.T) {
	t.Run("画像データはインラインパートになるのだ", func(t *testing.T) {
		part := ImagePart(pngHeader)
		require.NotNil(t, part)
		require.NotNil(t, part.InlineData)
		assert.Equal(t, "image/png", part.InlineData.MIMEType)
	})

	t.Run("画像でないデータは nil なのだ", func(t *testing.T) {
		assert.Nil(t, ImagePart([]byte("plain text")))
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil は再試行しない", nil, false},
		{"一般的なネットワークエラーは再試行する", errors.New("connection reset"), true},
		{"レート制限は再試行する", genai.APIError{Code: 429}, true},
		{"サーバーエラーは再試行する", fmt.Errorf("wrapped: %w", genai.APIError{Code: 503}), true},
		{"不正なリクエストは再試行しない", genai.APIError{Code: 400}, false},
		{"認証エラーは再試行しない", fmt.Errorf("wrapped: %w", genai.APIError{Code: 403}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestClient_BuildConfig(t *testing.T) {
	c := &Client{}

	t.Run("システムプロンプトを反映し温度は指定が無ければ nil なのだ", func(t *testing.T) {
		cfg := c.buildConfig(GenerateOptions{SystemPrompt: "be an editor", ResponseMIMEType: MIMETypeJSON})
		require.NotNil(t, cfg.SystemInstruction)
		assert.Equal(t, "be an editor", cfg.SystemInstruction.Parts[0].Text)
		assert.Equal(t, MIMETypeJSON, cfg.ResponseMIMEType)
		assert.Nil(t, cfg.Temperature)
		assert.Nil(t, cfg.ImageConfig)
	})

	t.Run("呼び出しごとの温度とアスペクト比を反映するのだ", func(t *testing.T) {
		override := float32(0.9)
		cfg := c.buildConfig(GenerateOptions{
			Temperature:        &override,
			AspectRatio:        "3:4",
			ResponseModalities: []string{ModalityText, ModalityImage},
		})
		assert.Equal(t, &override, cfg.Temperature)
		require.NotNil(t, cfg.ImageConfig)
		assert.Equal(t, "3:4", cfg.ImageConfig.AspectRatio)
		assert.Equal(t, []string{"TEXT", "IMAGE"}, cfg.ResponseModalities)
		assert.Nil(t, cfg.SystemInstruction)
	})
}
