package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TingFM/cache"
	"TingFM/config"
	"TingFM/core/music"
	"TingFM/core/room"
	"TingFM/logger"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
	defer logger.Sync()

	// 设置服务器超时
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Redis 只承担曲库查询缓存，连不上照常跑，缓存整体退化为直连音源
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis 连接失败，查询缓存停用", logger.ErrorField(err))
	}
	defer cache.CloseRedis()

	// 事件广播中心
	hub := room.NewHub()
	go hub.Run()
	defer hub.Stop()

	// 房间会话管理
	manager := room.NewManager()

	// 曲库查询入口，QQ音乐优先，网易云兜底
	timeout := time.Duration(cfg.MusicTimeout) * time.Second
	qq := music.NewQQProvider(timeout)
	qq.SetBaseURL(cfg.QQAPIBase, cfg.QQVkeyBase)
	netease := music.NewNeteaseProvider(timeout)
	netease.SetBaseURL(cfg.NeteaseAPIBase)
	resolver := music.NewResolver(cache.NewMusicCache(), timeout, cfg.MusicRateLimit, qq, netease)

	handler := NewHandler(manager, resolver, hub, cfg.SearchLimit)

	// 配置热更新，改 .env 即生效，只覆盖动态项
	stopWatch, err := config.Watch(".env", func(next *config.Config) {
		logger.SetLevel(logger.LogLevel(next.LogLevel))
		handler.SetSearchLimit(next.SearchLimit)
	})
	if err != nil {
		logger.Warn("配置热更新不可用", logger.ErrorField(err))
	} else {
		defer stopWatch()
	}

	// 使用 gorilla/mux 创建路由器
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	RegisterRoutes(router, handler)

	server.Handler = router

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		log.Printf("Server starting on :%s...", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on :%s: %v\n", cfg.ServerPort, err)
		}
	}()

	logger.Info("服务已启动",
		logger.String("port", cfg.ServerPort),
		logger.Int("searchLimit", cfg.SearchLimit))

	// 等待中断信号
	<-stop
	log.Println("Shutting down server...")

	// 带超时的优雅停机
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("服务停机失败", logger.ErrorField(err))
	}
	log.Println("Server gracefully stopped")
}
