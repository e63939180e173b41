package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"MuseFM/config"
	"MuseFM/core/generate"

	"github.com/spf13/cobra"
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "生成后端连接测试",
	Long:  `检查生成后端的健康状态并探测其可用的计算设备。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("生成后端: %s\n", cfg.BackendURL)

		client := generate.NewClient(cfg.BackendURL, cfg.BackendKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := client.WaitForHealthy(ctx); err != nil {
			log.Fatalf("后端健康检查失败: %v", err)
		}
		fmt.Println("后端健康检查通过！")

		device := client.DetectDevice(ctx)
		fmt.Printf("计算设备: %s\n", device)
	},
}

func init() {
	rootCmd.AddCommand(backendCmd)
}
