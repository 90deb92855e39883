// slidepress 将 Markdown 转换为幻灯片：命令行转换、HTTP 服务与 MCP 工具共用同一引擎。
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ByLCY/slidepress/config"
)

// version 在构建时通过 ldflags 注入。
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "slidepress",
	Short: "Markdown 转幻灯片",
	Long: `slidepress 将 Markdown 文档切分为幻灯片，按模板版式排版并自动选择字号，
输出 PDF、PNG 预览或 DOCX 讲义。

子命令 convert 与 describe 在本地处理文件；serve 提供 HTTP 接口；mcp 以 MCP 工具形式提供转换能力。`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "配置文件（默认 ./slidepress.yaml 或 ~/.config/slidepress/slidepress.yaml）")
	rootCmd.Version = version
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("slidepress")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "slidepress"))
		}
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig 读取并校验配置，同时按 log.* 创建日志器。
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, newLogger(os.Stderr, cfg.Log), nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
