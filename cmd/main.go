package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-course-platform/config"
	"github.com/oksasatya/go-course-platform/internal/application"
	"github.com/oksasatya/go-course-platform/internal/container"
	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	repo "github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/cache"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-course-platform/internal/infrastructure/postgres"
	"github.com/oksasatya/go-course-platform/internal/interface/middleware"
	"github.com/oksasatya/go-course-platform/internal/router"
	"github.com/oksasatya/go-course-platform/pkg/helpers"
	"github.com/oksasatya/go-course-platform/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	tokens, err := helpers.NewTokenIssuer(helpers.JWTOptions{
		SecurityKey: cfg.JWTSecurityKey,
		Issuer:      cfg.JWTIssuer,
		Audience:    cfg.JWTAudience,
		Algorithm:   cfg.JWTAlgorithm,
	})
	if err != nil {
		log.Fatalf("jwt: %v (set JWT_SECURITY_KEY)", err)
	}

	policy := helpers.DefaultPasswordPolicy()
	policy.MinLength = cfg.PasswordMinLength

	var (
		credentials repo.CredentialStore
		catalog     repo.CatalogFactory
	)
	if cfg.UsesMemoryStore() {
		logger.Warn("STORE_DRIVER=memory; data is lost on restart")
		credentials = memory.NewCredentialStore(policy, cfg.BcryptCost)
		catalog = memory.NewCatalogFactory(memory.NewStore())
	} else {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		store := pginfra.NewCredentialStore(pool, policy, cfg.BcryptCost)
		if err := store.EnsureRoles(ctx, entity.RoleAdmin, entity.RoleStudent, entity.RoleCompany); err != nil {
			log.Fatalf("failed to ensure roles: %v", err)
		}
		container.SetPGPool(pool)
		credentials = store
		catalog = pginfra.NewCatalogFactory(pool)
	}

	// Redis cache-aside for catalogue lookups by id
	if cfg.CacheTTL > 0 && cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := pingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Warn("redis unavailable; catalogue cache disabled")
		} else {
			catalog = cache.NewCatalogFactory(catalog, rdb, cfg.CacheTTL, logger)
			container.SetRedis(rdb)
		}
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
		container.SetPictureStorage(helpers.NewGCSUploader(gcsClient, cfg.GCSBucket))
	}

	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; notifications disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 && cfg.ESCoursesIndex != "" {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch client init failed; search disabled")
		} else {
			if err := helpers.EnsureIndex(ctx, es, cfg.ESCoursesIndex, application.CoursesIndexMapping); err != nil {
				logger.WithError(err).Warn("elasticsearch index check failed")
			}
			container.SetES(es)
		}
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetTokens(tokens)
	container.SetCredentialStore(credentials)
	container.SetCatalog(catalog)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}
	if cfg.DebugMetricsEnabled {
		r.Use(middleware.Metrics())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithField("store", cfg.StoreDriver).Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

func pingRedis(ctx context.Context, rdb *redis.Client) error {
	c, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return rdb.Ping(c).Err()
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
