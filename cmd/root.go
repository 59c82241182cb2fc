package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-manga-pdf/internal/config"
	"github.com/shouni/go-manga-pdf/internal/logging"

	"github.com/spf13/cobra"
)

var (
	opts      config.GenerateOptions
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "manga-pdf",
	Short: "ストーリーから漫画を生成し、PDF にまとめるのだ。",
	Long: `プロンプトを AI に渡して漫画の構成案（プラン）を作り、
パネルまたはページ単位で画像を生成して1つの PDF に組版するのだ。`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRunAppE,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "ログレベル (debug, info, warn, error) なのだ。")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatAuto, "ログ形式 (auto, text, json) なのだ。")

	rootCmd.AddCommand(generateCmd, planCmd, renderCmd)
}

// addGenerationFlags は画像生成を伴うコマンドに共通のフラグを定義するのだ。
func addGenerationFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "画像の生成単位 (panel または page) なのだ。")
	cmd.Flags().StringVar(&opts.CharRef, "char-ref", "", "キャラクターの一貫性の保ち方 (text または image) なのだ。")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "カラーで作画するのだ（既定はモノクロ）。")
	cmd.Flags().StringVar(&opts.ImageModel, "image-model", "", "画像生成に使う Gemini モデル名なのだ。")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "同時に生成する画像の最大数なのだ。")
}

// addCommonFlags はすべての実行系コマンドに共通のフラグを定義するのだ。
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "成果物を保存するディレクトリなのだ。")
	cmd.Flags().StringVar(&opts.AIModel, "model", "", "プランの生成に使う Gemini モデル名なのだ。")
	cmd.Flags().IntVar(&opts.MaxRetries, "max-retries", -1, "一時的なエラーで再試行する回数なのだ。")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "1回のリモート呼び出しのタイムアウトなのだ。")
	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "TOML 形式の設定ファイルなのだ。")
}

// preRunAppE はログ出力を初期化し、既定のロガーとして設定するのだ。
func preRunAppE(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(logging.Options{Level: logLevel, Format: logFormat, Writer: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// 失敗した場合はエラーを表示して終了コード 1 で終了します。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
}
