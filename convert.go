package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/handout"
	"github.com/ByLCY/slidepress/layout"
	canvasrenderer "github.com/ByLCY/slidepress/renderer/canvas"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "将 Markdown 文件转换为 PDF",
	Long: `convert 读取 Markdown 文件并输出 PDF。图片的相对路径以输入文件所在目录解析。
--debug 输出幻灯片模型 JSON，--handout 额外输出 DOCX 讲义。诊断信息写入标准错误。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		var opts convertOptions
		opts.input, _ = cmd.Flags().GetString("in")
		opts.output, _ = cmd.Flags().GetString("out")
		opts.debug, _ = cmd.Flags().GetString("debug")
		opts.handout, _ = cmd.Flags().GetString("handout")
		if tpl, _ := cmd.Flags().GetString("template"); tpl != "" {
			cfg.Template = tpl
		}
		if err := runConvert(cmd.Context(), cfg, log, opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已生成 PDF：%s\n", opts.outputPath())
		return nil
	},
}

func init() {
	convertCmd.Flags().String("in", "", "Markdown 文件路径")
	convertCmd.Flags().String("out", "", "PDF 输出路径（默认与输入同名）")
	convertCmd.Flags().String("template", "", "模板文件，覆盖配置中的 template")
	convertCmd.Flags().String("debug", "", "幻灯片模型调试 JSON 输出路径")
	convertCmd.Flags().String("handout", "", "DOCX 讲义输出路径")
	_ = convertCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(convertCmd)
}

type convertOptions struct {
	input   string
	output  string
	debug   string
	handout string
}

func (o convertOptions) outputPath() string {
	if o.output != "" {
		return o.output
	}
	return strings.TrimSuffix(o.input, filepath.Ext(o.input)) + ".pdf"
}

// runConvert 串联解析、排版与渲染。
func runConvert(ctx context.Context, cfg config.Config, log *slog.Logger, opts convertOptions) error {
	md, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("无法读取 Markdown 文件 %s: %w", opts.input, err)
	}
	baseDir := cfg.Assets.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(opts.input)
	}
	engine, err := newEngine(cfg, log, baseDir)
	if err != nil {
		return err
	}
	d, diags, err := engine.Convert(ctx, md)
	if err != nil {
		return fmt.Errorf("转换失败: %w", err)
	}
	for _, dg := range diags {
		fmt.Fprintln(os.Stderr, dg.String())
	}

	if opts.debug != "" {
		if err := writeFile(opts.debug, nil, func(path string) error { return layout.WriteDebugJSON(d, path) }); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	pdf, err := canvasrenderer.NewRenderer(baseDir).Render(d)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := writeFile(opts.outputPath(), pdf, nil); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}

	if opts.handout != "" {
		doc, err := handout.Writer{}.Render(d)
		if err != nil {
			return fmt.Errorf("生成讲义失败: %w", err)
		}
		if err := writeFile(opts.handout, doc, nil); err != nil {
			return fmt.Errorf("写入讲义失败: %w", err)
		}
	}
	return nil
}

// writeFile 创建父目录后写入 data；write 非空时由其负责写入。
func writeFile(path string, data []byte, write func(string) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if write != nil {
		return write(path)
	}
	return os.WriteFile(path, data, 0o644)
}
