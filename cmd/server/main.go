package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/handler"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/service"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/sse"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/storage"
	"github.com/Chenxiaohui126/battery-management-system/internal/config"
	"github.com/Chenxiaohui126/battery-management-system/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// readyFunc 就绪检查
type readyFunc func(ctx context.Context) error

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting battery management service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("upload_storage", cfg.Upload.Storage),
	)

	ctx := context.Background()

	// 初始化存储
	kv, ready, closeStore, err := initStore(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to init storage", zap.Error(err))
	}
	defer closeStore()

	repos := repository.NewRepositories(kv, zapLogger)
	if err := repos.Init(ctx); err != nil {
		zapLogger.Fatal("Failed to init data", zap.Error(err))
	}

	// 图片存储
	blobs, err := initBlobs(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("Failed to init image storage", zap.Error(err))
	}

	hub := sse.NewHub(zapLogger)
	services := service.NewServices(repos, hub, service.Options{
		StrictImport: cfg.Import.Strict,
		Blobs:        blobs,
	}, zapLogger)
	handlers := handler.NewHandlers(services, hub, cfg.Upload.MaxSize, zapLogger)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger, "/api/events"))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/events"})))

	// 注册路由
	registerRoutes(router, handlers, cfg, ready)

	// 创建HTTP服务器
	srv := newHTTPServer(&cfg.Server, router)

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

// initStore 按 storage.driver 创建键值存储
func initStore(cfg *config.Config) (repository.KVStore, readyFunc, func(), error) {
	noop := func() {}
	alwaysReady := func(context.Context) error { return nil }

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return repository.NewMemoryKV(), alwaysReady, noop, nil

	case config.StorageFile:
		kv, err := repository.NewFileKV(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv, alwaysReady, noop, nil

	case config.StorageRedis:
		rdb := initRedis(cfg.Redis)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		ready := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		return repository.NewRedisKV(rdb, cfg.Storage.RedisPrefix), ready, func() { rdb.Close() }, nil

	case config.StoragePostgres, config.StorageMySQL:
		db, err := initDatabase(cfg.Storage.Driver, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		kv := repository.NewGormKV(db)
		if err := kv.Migrate(); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to migrate: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, err
		}
		return kv, sqlDB.PingContext, func() { sqlDB.Close() }, nil
	}
	return nil, nil, nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
}

func initDatabase(driver string, cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if driver == config.StorageMySQL {
		dialector = mysql.Open(cfg.MySQLDSN())
	} else {
		dialector = postgres.Open(cfg.DSN())
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// initBlobs 图片存储；inline 模式返回 nil，图片以 data-URL 保存在记录里
func initBlobs(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Upload.Storage {
	case storage.ModeLocal:
		return storage.NewLocalBlobStore(cfg.Upload.Dir, "/uploads"), nil
	case storage.ModeMinIO:
		store, err := storage.NewMinIOBlobStore(ctx, storage.MinIOOptions{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
			PublicURL: cfg.MinIO.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, nil
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, ready readyFunc) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		if err := ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// 静态文件服务 - 上传的图片
	if cfg.Upload.Storage == storage.ModeLocal {
		r.Static("/uploads", cfg.Upload.Dir)
	}

	// 前端页面
	staticDir := cfg.Server.StaticDir
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, handler.ErrorResponse{Error: "Not found"})
			return
		}
		file := filepath.Join(staticDir, filepath.Clean("/"+path))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); errors.Is(err, os.ErrNotExist) {
			c.String(http.StatusNotFound, "index.html not found")
			return
		}
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.File(index)
	})

	api := r.Group("/api", middleware.BodyLimit(cfg.Upload.MaxSize))
	h.Register(api)
}

// newHTTPServer 只设置读超时；/api/events 是长连接，写超时会切断事件流
func newHTTPServer(cfg *config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:        cfg.Addr(),
		Handler:     handler,
		ReadTimeout: cfg.ReadTimeout,
	}
}
