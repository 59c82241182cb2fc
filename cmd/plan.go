package cmd

import (
	"github.com/shouni/go-manga-pdf/internal/config"
	"github.com/shouni/go-manga-pdf/internal/pipeline"

	"github.com/spf13/cobra"
)

// planCmd は構成案の生成と保存だけを行うのだ。画像は生成しません。
var planCmd = &cobra.Command{
	Use:     "plan [prompt]",
	Short:   "漫画の構成案だけを生成して JSON に保存するのだ。",
	Example: `  manga-pdf plan "A cat discovering magic powers" -o out`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    planCommand,
}

func init() {
	addCommonFlags(planCmd)
	planCmd.Flags().StringVar(&opts.PromptFile, "prompt-file", "", "ストーリーを記述したテキストファイルなのだ。")
}

func planCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		opts.Prompt = args[0]
	}
	opts.PlanOnly = true

	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	return pipeline.Execute(cmd.Context(), cfg, cmd.OutOrStdout())
}
