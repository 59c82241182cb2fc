package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	// ModalityText はテキスト応答を要求するモダリティです。
	ModalityText = "TEXT"
	// ModalityImage は画像応答を要求するモダリティです。
	ModalityImage = "IMAGE"
	// MIMETypeJSON はスキーマ制約付きの構造化出力で使う MIME タイプです。
	MIMETypeJSON = "application/json"
)

// GenerativeModel は生成 AI サービスとの境界を表す契約です。
type GenerativeModel interface {
	// GenerateContent はテキストプロンプト1つでコンテンツを生成します。
	GenerateContent(ctx context.Context, model string, prompt string, opts GenerateOptions) (*Response, error)
	// GenerateWithParts は画像などを含む複数パートでコンテンツを生成します。
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts GenerateOptions) (*Response, error)
}

// GenerateOptions は1回の生成リクエストに付与するオプションです。
type GenerateOptions struct {
	SystemPrompt       string
	ResponseMIMEType   string
	ResponseSchema     *genai.Schema
	ResponseModalities []string
	AspectRatio        string
	// Temperature が nil の場合はモデル側の既定値が使われます。
	Temperature *float32
}

// Response は生成結果のテキストと生のレスポンスを保持します。
type Response struct {
	Text        string
	RawResponse *genai.GenerateContentResponse
}

// Config は Client の初期化設定です。
// 温度などの生成パラメータはクライアント全体ではなく GenerateOptions で呼び出しごとに指定します。
type Config struct {
	APIKey string
	// Timeout は1回のリモート呼び出しの上限時間です。0 の場合は制限しません。
	Timeout time.Duration
}

// Client は genai.Client を包み、呼び出しごとのタイムアウトを適用します。
type Client struct {
	client  *genai.Client
	timeout time.Duration
}

// NewClient は Gemini API バックエンドのクライアントを初期化します。
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("APIキーは必須です")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genaiクライアントの作成に失敗しました: %w", err)
	}

	return &Client{
		client:  c,
		timeout: cfg.Timeout,
	}, nil
}

// GenerateContent はテキストプロンプト1つでコンテンツを生成します。
func (c *Client) GenerateContent(ctx context.Context, model string, prompt string, opts GenerateOptions) (*Response, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("プロンプトが空です")
	}
	return c.GenerateWithParts(ctx, model, []*genai.Part{{Text: prompt}}, opts)
}

// GenerateWithParts は画像などを含む複数パートでコンテンツを生成します。
func (c *Client) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts GenerateOptions) (*Response, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("リクエストのパートが空です")
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
	resp, err := c.client.Models.GenerateContent(callCtx, model, contents, c.buildConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("モデル %s の呼び出しに失敗しました: %w", model, err)
	}

	return &Response{Text: resp.Text(), RawResponse: resp}, nil
}

// buildConfig は GenerateOptions を genai の設定に変換します。
func (c *Client) buildConfig(opts GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:        opts.Temperature,
		ResponseMIMEType:   opts.ResponseMIMEType,
		ResponseSchema:     opts.ResponseSchema,
		ResponseModalities: opts.ResponseModalities,
	}
	if opts.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: opts.SystemPrompt}}}
	}
	if opts.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: opts.AspectRatio}
	}
	return cfg
}
