package cmd

import (
	"context"
	"fmt"
	"log"

	"MuseFM/cache"
	"MuseFM/config"
	"MuseFM/core/audio"
	"MuseFM/core/generate"
	"MuseFM/model"
	"MuseFM/repository"

	"github.com/spf13/cobra"
)

var (
	genPrompt      string
	genStyle       string
	genDuration    int
	genTemperature float64
	genTopK        int
	genModel       string
	genNoFade      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "命令行一次性生成音乐",
	Long:  `不启动服务器，直接调用生成后端生成一段音乐并保存到音乐库。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		ctx := context.Background()

		req := model.GenerationRequest{
			Prompt:      genPrompt,
			Style:       genStyle,
			Duration:    genDuration,
			Temperature: genTemperature,
			TopK:        genTopK,
			Model:       genModel,
		}
		req.ApplyDefaults()
		if err := req.Validate(); err != nil {
			log.Fatalf("参数无效: %v", err)
		}

		repo, err := repository.NewLibraryRepository(cfg.MusicDir)
		if err != nil {
			log.Fatalf("初始化音乐库失败: %v", err)
		}

		client := generate.NewClient(cfg.BackendURL, cfg.BackendKey)
		fmt.Printf("等待生成后端就绪: %s\n", cfg.BackendURL)
		if err := client.WaitForHealthy(ctx); err != nil {
			log.Fatalf("生成后端不可用: %v", err)
		}

		generator := generate.NewGenerator(ctx, client, cfg.Device)
		fmt.Printf("开始生成: %q (风格: %s, 时长: %ds)\n", req.Prompt, req.Style, req.Duration)

		sample, stats, err := generator.GenerateWithStyle(ctx, req)
		if err != nil {
			log.Fatalf("生成失败: %v", err)
		}
		if !genNoFade {
			audio.ApplyFades(sample, 1.0, 2.0)
		}

		path, err := repo.Save(sample, req.Prompt, model.MusicRecord{
			Style:          req.Style,
			Duration:       req.Duration,
			Temperature:    req.Temperature,
			TopK:           req.TopK,
			Model:          req.Model,
			GenerationTime: stats.Elapsed.Seconds(),
		})
		if err != nil {
			log.Fatalf("保存失败: %v", err)
		}

		// 正在运行的服务器可能缓存了音乐库列表，保存后使其失效
		if cfg.RedisEnabled() {
			if err := cache.ConnectRedis(cfg); err != nil {
				log.Printf("Redis不可用，跳过缓存失效: %v", err)
			} else {
				cache.InvalidateLibrary(ctx)
				cache.CloseRedis()
			}
		}

		fmt.Printf("%s\n已保存: %s\n", stats.Message(), path)

		// 用ffprobe确认落盘文件的实际时长
		converter := audio.NewFFmpegProcessor(cfg.FFmpegPath)
		if actual, err := converter.Duration(path); err == nil {
			fmt.Printf("实际时长: %.1f 秒\n", actual)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&genPrompt, "prompt", "p", "", "音乐描述提示词 (必填)")
	generateCmd.Flags().StringVarP(&genStyle, "style", "s", "", "音乐风格 (jazz/classical/electronic/rock/ambient/pop)")
	generateCmd.Flags().IntVarP(&genDuration, "duration", "d", 30, "时长(秒)")
	generateCmd.Flags().Float64VarP(&genTemperature, "temperature", "t", 1.0, "采样温度")
	generateCmd.Flags().IntVarP(&genTopK, "top-k", "k", 250, "top-k采样参数")
	generateCmd.Flags().StringVarP(&genModel, "model", "m", "", "模型大小 (small/medium/large)")
	generateCmd.Flags().BoolVar(&genNoFade, "no-fade", false, "禁用淡入淡出")
	generateCmd.MarkFlagRequired("prompt")
}
