package cmd

import (
	"fmt"

	"github.com/shouni/go-manga-pdf/internal/config"
	"github.com/shouni/go-manga-pdf/internal/pipeline"

	"github.com/spf13/cobra"
)

// generateCmd はストーリーから PDF までの全工程を実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "ストーリーから漫画を生成して PDF にするのだ。",
	Long: `ストーリーを AI に渡して構成案を作り、画像を生成して PDF に組版するのだ。
ストーリーは引数か --prompt-file のどちらかで指定するのだよ。`,
	Example: `  manga-pdf generate "A cat discovering magic powers" --mode page --color
  manga-pdf generate --prompt-file story.txt --char-ref image -o out`,
	Args: cobra.MaximumNArgs(1),
	RunE: generateCommand,
}

func init() {
	addGenerationFlags(generateCmd)
	generateCmd.Flags().StringVar(&opts.PromptFile, "prompt-file", "", "ストーリーを記述したテキストファイルなのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		opts.Prompt = args[0]
	}

	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	if err := pipeline.Execute(cmd.Context(), cfg, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("漫画の生成に失敗しました: %w", err)
	}
	return nil
}
