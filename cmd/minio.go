package cmd

import (
	"context"
	"fmt"
	"log"

	"MuseFM/config"
	"MuseFM/storage"

	"github.com/spf13/cobra"
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO归档检查",
	Long:  `连接MinIO归档存储桶并列出已归档的音频文件。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始连接MinIO服务器...")

		// 加载配置
		cfg := config.Load()
		if !cfg.MinioEnabled() {
			log.Fatal("MinIO未配置，请设置 MINIO_ENDPOINT 等环境变量")
		}
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		// 初始化MinIO客户端
		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("无法连接到MinIO: %v", err)
		}
		fmt.Println("MinIO连接成功！")

		// 列出归档文件
		names, err := storage.ListArchived(context.Background(), cfg)
		if err != nil {
			log.Fatalf("列出归档文件失败: %v", err)
		}
		fmt.Printf("\n归档文件共 %d 个:\n", len(names))
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}

		fmt.Println("\nMinIO操作完成！")
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
}
