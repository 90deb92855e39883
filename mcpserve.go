package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ByLCY/slidepress/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "以 MCP 工具形式提供转换",
	Long: `mcp 按 mcp.transport 启动 MCP 服务（stdio 或 sse），提供 md_to_deck、describe_deck 与 preview_slide 工具。
stdio 模式下日志只写入标准错误。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if transport, _ := cmd.Flags().GetString("transport"); transport != "" {
			cfg.MCP.Transport = transport
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, closeStore, err := newService(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		return mcp.Run(ctx, svc, cfg.MCP, version, log)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "", "传输方式 stdio 或 sse，覆盖 mcp.transport")

	rootCmd.AddCommand(mcpCmd)
}
