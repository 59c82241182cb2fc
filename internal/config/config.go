package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/shouni/go-utils/envutil"

	libconfig "github.com/shouni/go-manga-pdf/pkg/config"
	"github.com/shouni/go-manga-pdf/pkg/domain"
)

// 環境変数名の定義なのだ
const (
	EnvAPIKey     = "GEMINI_API_KEY"
	EnvAPIKeyAlt  = "GOOGLE_API_KEY"
	EnvModel      = "GEMINI_MODEL"
	EnvImageModel = "IMAGE_GEMINI_MODEL"
	EnvOutputDir  = "MANGA_OUTPUT_DIR"

	DefaultEnvFile = ".env"
)

var (
	// ErrMissingAPIKey は API キーがどこにも設定されていない場合に返されます。
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")
	// ErrPromptConflict はプロンプトとプロンプトファイルが両方指定された場合に返されます。
	ErrPromptConflict = errors.New("prompt and --prompt-file are mutually exclusive")
)

// Config はアプリケーション全体の設定を保持する構造体なのだ。
// 優先順位は CLI フラグ > TOML ファイル > 環境変数 > 既定値です。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	OutputDir        string

	Mode        string
	CharRef     string
	Color       bool
	Concurrency int
	MaxRetries  int
	Timeout     time.Duration

	Options GenerateOptions
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
// ゼロ値のフィールドは「指定なし」として扱います（MaxRetries は負の値が指定なし）。
type GenerateOptions struct {
	Prompt      string        // 位置引数
	PromptFile  string        // --prompt-file
	PlanFile    string        // --plan
	OutputDir   string        // --output-dir
	Mode        string        // --mode
	CharRef     string        // --char-ref
	Color       bool          // --color
	Concurrency int           // --concurrency
	MaxRetries  int           // --max-retries
	Timeout     time.Duration // --timeout
	AIModel     string        // --model
	ImageModel  string        // --image-model
	ConfigFile  string        // --config
	PlanOnly    bool
}

// FileConfig は --config で指定する TOML ファイルの構造です。
type FileConfig struct {
	Gemini struct {
		Model      string `toml:"model"`
		ImageModel string `toml:"image_model"`
	} `toml:"gemini"`
	Generation struct {
		Mode        string `toml:"mode"`
		CharRef     string `toml:"char_ref"`
		Color       *bool  `toml:"color"`
		Concurrency int    `toml:"concurrency"`
		MaxRetries  *int   `toml:"max_retries"`
		Timeout     string `toml:"timeout"`
	} `toml:"generation"`
	Output struct {
		Dir string `toml:"dir"`
	} `toml:"output"`
}

// LoadEnvFile は .env ファイルがあれば読み込みます。既に設定済みの環境変数は上書きしません。
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("envファイルの確認に失敗しました: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("envファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	return nil
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	apiKey := getEnv(EnvAPIKey, "")
	if apiKey == "" {
		apiKey = getEnv(EnvAPIKeyAlt, "")
	}

	return &Config{
		GeminiAPIKey:     apiKey,
		GeminiModel:      getEnv(EnvModel, libconfig.DefaultPlannerModel),
		GeminiImageModel: getEnv(EnvImageModel, libconfig.DefaultImageModel),
		OutputDir:        getEnv(EnvOutputDir, libconfig.DefaultOutputDir),
		Mode:             string(domain.ModePanel),
		CharRef:          string(domain.CharRefText),
		Concurrency:      libconfig.DefaultMaxConcurrency,
		MaxRetries:       libconfig.DefaultMaxRetries,
		Timeout:          libconfig.DefaultRequestTimeout,
	}
}

// getEnv は envutil.GetEnv の結果から前後の空白を取り除きます。
// 空白だけの値は未設定として扱い、fallback を返すのだ。
func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(envutil.GetEnv(key, fallback)); v != "" {
		return v
	}
	return fallback
}

// ApplyFile は TOML ファイルの値で設定を上書きします。path が空の場合は何もしません。
// 未知のキーはエラーになります。
func (c *Config) ApplyFile(path string) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("設定ファイルを開けませんでした: %w", err)
	}
	defer f.Close()

	var fc FileConfig
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fmt.Errorf("設定ファイル '%s' の解析に失敗しました: %w", path, err)
	}

	setString(&c.GeminiModel, fc.Gemini.Model)
	setString(&c.GeminiImageModel, fc.Gemini.ImageModel)
	setString(&c.OutputDir, fc.Output.Dir)
	setString(&c.Mode, fc.Generation.Mode)
	setString(&c.CharRef, fc.Generation.CharRef)
	if fc.Generation.Color != nil {
		c.Color = *fc.Generation.Color
	}
	if fc.Generation.Concurrency > 0 {
		c.Concurrency = fc.Generation.Concurrency
	}
	if fc.Generation.MaxRetries != nil {
		c.MaxRetries = *fc.Generation.MaxRetries
	}
	if fc.Generation.Timeout != "" {
		d, err := time.ParseDuration(fc.Generation.Timeout)
		if err != nil {
			return fmt.Errorf("設定ファイルの timeout が不正です: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// ApplyOptions は CLI フラグで指定された値で設定を上書きします。
func (c *Config) ApplyOptions(opts GenerateOptions) {
	c.Options = opts

	setString(&c.GeminiModel, opts.AIModel)
	setString(&c.GeminiImageModel, opts.ImageModel)
	setString(&c.OutputDir, opts.OutputDir)
	setString(&c.Mode, opts.Mode)
	setString(&c.CharRef, opts.CharRef)
	if opts.Color {
		c.Color = true
	}
	if opts.Concurrency > 0 {
		c.Concurrency = opts.Concurrency
	}
	if opts.MaxRetries >= 0 {
		c.MaxRetries = opts.MaxRetries
	}
	if opts.Timeout > 0 {
		c.Timeout = opts.Timeout
	}
}

func setString(dst *string, v string) {
	if s := strings.TrimSpace(v); s != "" {
		*dst = s
	}
}

// Load は .env、環境変数、TOML ファイル、CLI フラグの順に設定を重ねて返すのだ。
func Load(opts GenerateOptions) (*Config, error) {
	if err := LoadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}
	cfg := LoadConfig()
	if err := cfg.ApplyFile(opts.ConfigFile); err != nil {
		return nil, err
	}
	cfg.ApplyOptions(opts)
	return cfg, nil
}

// Validate はリモート呼び出しの前に設定の妥当性を確認します。
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: 環境変数 %s（または %s）に API キーを設定するか、.env ファイルに記述してください",
			ErrMissingAPIKey, EnvAPIKey, EnvAPIKeyAlt)
	}
	if _, err := c.MangaConfig(); err != nil {
		return err
	}
	return c.ToLibraryConfig().Validate()
}

// MangaConfig は実行時の生成モードを組み立てます。
func (c *Config) MangaConfig() (domain.MangaConfig, error) {
	return domain.NewMangaConfig(c.Mode, c.CharRef, c.Color)
}

// ToLibraryConfig はライブラリ層の Config に変換します。
func (c *Config) ToLibraryConfig() libconfig.Config {
	lc := libconfig.NewConfig(c.GeminiAPIKey)
	lc.PlannerModel = c.GeminiModel
	lc.ImageModel = c.GeminiImageModel
	lc.MaxConcurrency = c.Concurrency
	lc.MaxRetries = c.MaxRetries
	lc.RequestTimeout = c.Timeout
	return lc
}

// ResolvePrompt は位置引数またはプロンプトファイルからストーリーを取得します。
// どちらも無い場合は空文字を返します。
func (c *Config) ResolvePrompt() (string, error) {
	opts := c.Options
	if opts.PromptFile == "" {
		return opts.Prompt, nil
	}
	if strings.TrimSpace(opts.Prompt) != "" {
		return "", ErrPromptConflict
	}

	data, err := os.ReadFile(opts.PromptFile)
	if err != nil {
		return "", fmt.Errorf("プロンプトファイル '%s' の読み込みに失敗しました: %w", opts.PromptFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}
