package config

import (
	"fmt"
	"time"
)

// デフォルト値の定義
const (
	DefaultPlannerModel         = "gemini-2.5-flash"
	DefaultImageModel           = "gemini-2.5-flash-image"
	DefaultPlannerTemperature   = float32(0.7)
	DefaultRateInterval         = 2 * time.Second
	DefaultRateBurst            = 2
	DefaultMaxConcurrency       = 4
	DefaultMaxRetries           = 3
	DefaultRetryInitialInterval = 2 * time.Second
	DefaultRetryMaxInterval     = 30 * time.Second
	DefaultRequestTimeout       = 3 * time.Minute
	DefaultOutputDir            = "output"
)

// Config は go-manga-pdf の各 Runner を動作させるための基本設定です。
// 実行開始時に一度だけ組み立て、以後は値として受け渡します。
type Config struct {
	// --- AI Model Settings ---
	PlannerModel       string
	ImageModel         string
	PlannerTemperature float32

	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string

	// --- Generation Settings ---
	RateInterval   time.Duration
	RateBurst      int
	MaxConcurrency int

	// --- Timeout & Retries ---
	MaxRetries           int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RequestTimeout       time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		PlannerModel:         DefaultPlannerModel,
		ImageModel:           DefaultImageModel,
		PlannerTemperature:   DefaultPlannerTemperature,
		RateInterval:         DefaultRateInterval,
		RateBurst:            DefaultRateBurst,
		MaxConcurrency:       DefaultMaxConcurrency,
		MaxRetries:           DefaultMaxRetries,
		RetryInitialInterval: DefaultRetryInitialInterval,
		RetryMaxInterval:     DefaultRetryMaxInterval,
		RequestTimeout:       DefaultRequestTimeout,
	}
}

// NewConfig はデフォルト値で初期化された Config に API キーをセットして返します。
func NewConfig(apiKey string) Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = apiKey
	return cfg
}

// Validate はリモート呼び出しの前に設定値の妥当性を確認します。
func (c Config) Validate() error {
	switch {
	case c.PlannerModel == "":
		return fmt.Errorf("プランナーモデルが指定されていません")
	case c.ImageModel == "":
		return fmt.Errorf("画像生成モデルが指定されていません")
	case c.MaxConcurrency < 1:
		return fmt.Errorf("並列数は1以上である必要があります: %d", c.MaxConcurrency)
	case c.MaxRetries < 0:
		return fmt.Errorf("リトライ回数は0以上である必要があります: %d", c.MaxRetries)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("リクエストタイムアウトは正の値である必要があります: %s", c.RequestTimeout)
	case c.RateBurst < 1:
		return fmt.Errorf("バースト数は1以上である必要があります: %d", c.RateBurst)
	case c.RateInterval < 0:
		return fmt.Errorf("レート間隔は0以上である必要があります: %s", c.RateInterval)
	}
	return nil
}
