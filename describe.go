package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/slidepress/deck"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "输出分页与版式摘要",
	Long: `describe 只进行分页、版式选择与字号计算，不加载图片也不绘制，
按 --format 输出每页的角色、标题、版式、内容块数量与字号。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		input, _ := cmd.Flags().GetString("in")
		format, _ := cmd.Flags().GetString("format")

		md, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("无法读取 Markdown 文件 %s: %w", input, err)
		}
		engine, err := newEngine(cfg, log, filepath.Dir(input))
		if err != nil {
			return err
		}
		sums, diags, err := engine.Describe(cmd.Context(), md)
		if err != nil {
			return err
		}
		for _, dg := range diags {
			fmt.Fprintln(cmd.ErrOrStderr(), dg.String())
		}
		switch strings.ToLower(format) {
		case "json":
			return deck.WriteJSON(cmd.OutOrStdout(), sums)
		case "", "yaml":
			return deck.WriteYAML(cmd.OutOrStdout(), sums)
		default:
			return fmt.Errorf("不支持的输出格式 %q（json|yaml）", format)
		}
	},
}

func init() {
	describeCmd.Flags().String("in", "", "Markdown 文件路径")
	describeCmd.Flags().String("format", "yaml", "输出格式：json 或 yaml")
	_ = describeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(describeCmd)
}
