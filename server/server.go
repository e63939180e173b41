package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MuseFM/cache"
	"MuseFM/config"
	"MuseFM/core/audio"
	"MuseFM/core/generate"
	"MuseFM/logger"
	"MuseFM/repository"
	"MuseFM/storage"

	"github.com/gorilla/mux"
)

// Start initializes all components and runs the HTTP server until SIGINT/SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})
	defer logger.Sync()

	repo, err := repository.NewLibraryRepository(cfg.MusicDir)
	if err != nil {
		logger.Fatal("failed to initialize music library", logger.ErrorField(err))
	}

	// Redis 缓存是可选的：连接失败只降级为无缓存，不阻止启动
	if cfg.RedisEnabled() {
		if err := cache.ConnectRedis(cfg); err != nil {
			logger.Warn("Redis unavailable, running without library cache", logger.ErrorField(err))
		} else {
			defer cache.CloseRedis()
			logger.Info("Successfully connected to Redis")
		}
	}

	// MinIO 归档同样可选，但配置了就必须能连上
	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("failed to initialize MinIO", logger.ErrorField(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听音乐目录，外部删除文件时使列表缓存失效
	watcher, err := repository.NewWatcher(cfg.MusicDir, func() {
		cache.InvalidateLibrary(context.Background())
	})
	if err != nil {
		logger.Warn("music directory watcher unavailable", logger.ErrorField(err))
	} else {
		go watcher.Run(ctx)
	}

	client := generate.NewClient(cfg.BackendURL, cfg.BackendKey)
	gen := generate.NewGenerator(ctx, client, cfg.Device)
	converter := audio.NewFFmpegProcessor(cfg.FFmpegPath)

	apiHandler := NewAPIHandler(repo, gen, converter, cfg)

	router := mux.NewRouter()

	// CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Style catalog
	router.HandleFunc("/api/styles", apiHandler.GetStylesHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/styles/{id}", apiHandler.GetStyleHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/suggestions", apiHandler.GetSuggestionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/prompt/preview", apiHandler.PreviewPromptHandler).Methods(http.MethodPost)

	// Generation
	router.HandleFunc("/api/generate", apiHandler.GenerateHandler).Methods(http.MethodPost)
	router.HandleFunc("/ws/generate", apiHandler.WebSocketGenerateHandler)

	// Music library
	router.HandleFunc("/api/library", apiHandler.GetLibraryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/library", apiHandler.DeleteRecordHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/library/recent", apiHandler.GetRecentHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/library/{filename}/download", apiHandler.DownloadHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", apiHandler.ExportPlaylistHandler).Methods(http.MethodPost)

	// Generated audio files
	musicFileServer := http.FileServer(http.Dir(cfg.MusicDir))
	router.PathPrefix("/music/").Handler(http.StripPrefix("/music/", musicFileServer))

	// Frontend UI serving
	uiFileServer := http.FileServer(http.Dir(cfg.WebAppDir))
	router.PathPrefix("/").Handler(uiFileServer)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// Generation on CPU can take minutes; the write timeout has to
		// outlive the slowest /api/generate call.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("MuseFM server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", logger.ErrorField(err))
	}
}
