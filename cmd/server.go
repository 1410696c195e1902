package cmd

import (
	"TingFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动TingFM服务器",
	Long:  `启动TingFM一起听服务的HTTP服务器，提供指令API和房间事件订阅`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
