package cmd

import (
	"fmt"

	"github.com/shouni/go-manga-pdf/internal/config"
	"github.com/shouni/go-manga-pdf/internal/pipeline"

	"github.com/spf13/cobra"
)

// renderCmd は保存済みの構成案から画像生成と組版を行うのだ。プランナーは呼び出しません。
var renderCmd = &cobra.Command{
	Use:     "render",
	Short:   "保存済みの構成案 JSON から漫画の PDF を生成するのだ。",
	Example: `  manga-pdf render --plan out/manga_plan.json --mode panel`,
	Args:    cobra.NoArgs,
	RunE:    renderCommand,
}

func init() {
	addGenerationFlags(renderCmd)
	renderCmd.Flags().StringVar(&opts.PlanFile, "plan", "", "読み込む構成案 JSON ファイルなのだ。")
	_ = renderCmd.MarkFlagRequired("plan")
}

func renderCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	if err := pipeline.Execute(cmd.Context(), cfg, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("構成案からの生成に失敗しました: %w", err)
	}
	return nil
}
