// Package main — точка входа Sales Service.
// Sales Service — консоль продаж: сессии составления заказов, многоуровневое
// ценообразование, контроль остатков и маржи, наложение исторических цен.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/sales-console/pkg/breaker"
	"example.com/sales-console/pkg/config"
	"example.com/sales-console/pkg/db"
	"example.com/sales-console/pkg/healthcheck"
	"example.com/sales-console/pkg/jwt"
	"example.com/sales-console/pkg/kafka"
	"example.com/sales-console/pkg/logger"
	"example.com/sales-console/pkg/metrics"
	"example.com/sales-console/pkg/tracing"
	"example.com/sales-console/services/sales/internal/domain"
	"example.com/sales-console/services/sales/internal/handler"
	"example.com/sales-console/services/sales/internal/middleware"
	"example.com/sales-console/services/sales/internal/repository"
	"example.com/sales-console/services/sales/internal/service"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Ошибка загрузки конфигурации")
	}

	// Инициализируем логгер
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Pretty: cfg.App.LogPretty,
	})

	logger.Info().
		Str("service", cfg.App.Name).
		Str("env", cfg.App.Env).
		Msg("Запуск Sales Service")

	// === Observability: Metrics + Tracing ===

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr(), "sales")
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Ошибка Metrics Server")
			}
		}()
	}

	shutdownTracing, err := tracing.InitTracer(tracing.Config{
		ServiceName:    "sales",
		JaegerEndpoint: cfg.Jaeger.OTLPEndpoint(),
		Environment:    cfg.App.Env,
		SampleRatio:    cfg.Jaeger.SampleRatio,
		Enabled:        cfg.Jaeger.Enabled,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Не удалось инициализировать tracing")
	}

	// === Хранилища ===

	gormDB, err := db.ConnectMySQL(cfg.MySQL, cfg.IsDevelopment())
	if err != nil {
		logger.Fatal().Err(err).Msg("Не удалось подключиться к MySQL")
	}
	logger.Info().Str("database", cfg.MySQL.Database).Msg("Подключено к MySQL")

	redisClient := db.ConnectRedis(cfg.Redis)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Ошибка закрытия Redis")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("Не удалось подключиться к Redis")
	}
	cancel()
	logger.Info().Str("addr", cfg.Redis.Addr()).Msg("Подключено к Redis")

	// === Kafka Producer ===

	var events service.EventPublisher
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers})
		if err != nil {
			logger.Fatal().Err(err).Msg("Ошибка создания Kafka Producer")
		}
		events = producer
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error().Err(err).Msg("Ошибка закрытия Kafka Producer")
			}
		}()
	} else {
		logger.Warn().Msg("Kafka отключена, события заказов публиковаться не будут")
	}

	// === Движок корзины ===

	settings := domain.Settings{
		Currency:           cfg.Sales.Currency,
		FlatTaxRatePercent: cfg.Sales.FlatTaxRatePercent,
		OrderType:          cfg.Sales.OrderType,
	}

	carts := service.NewCartService(service.Deps{
		Catalog:        repository.NewCatalogRepository(gormDB),
		History:        repository.NewPriceHistoryRepository(gormDB),
		Customers:      repository.NewCustomerRepository(gormDB),
		Orders:         repository.NewSalesOrderRepository(gormDB),
		Costs:          service.NewCostCache(redisClient, cfg.Sales.CostCacheTTL),
		Events:         events,
		HistoryBreaker: breaker.New("price-history"),
	}, settings, cfg.Sales.SessionTTL)

	// Фоновая очистка просроченных сессий
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	carts.StartJanitor(janitorCtx, time.Minute)

	// === Middleware ===

	validator, err := jwt.NewValidator(jwt.Config{
		PublicKeyPath: cfg.JWT.PublicKeyPath,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Ошибка инициализации JWT валидатора")
	}

	authMW := middleware.NewAuthMiddleware(validator)
	rateLimitMW := middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
		Redis:  redisClient,
		Limit:  cfg.Sales.RateLimitRPM,
		Window: time.Minute,
	})
	tracingMW := middleware.NewTracingMiddleware()

	// === Роутер и HTTP сервер ===

	checks := []healthcheck.Check{
		func(ctx context.Context) error { return healthcheck.CheckMySQL(ctx, gormDB) },
		func(ctx context.Context) error { return healthcheck.CheckRedis(ctx, redisClient) },
	}
	if cfg.Kafka.Enabled {
		checks = append(checks, func(ctx context.Context) error {
			return healthcheck.CheckKafka(ctx, cfg.Kafka.Brokers)
		})
	}
	readiness := healthcheck.Composite(checks...)

	router := handler.NewRouter(handler.RouterConfig{
		Carts:          carts,
		AuthMW:         authMW,
		RateLimitMW:    rateLimitMW,
		TracingMW:      tracingMW,
		ReadinessCheck: handler.ReadinessChecker(readiness),
		Debug:          cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.HTTP.Addr()).
			Msg("HTTP сервер запущен")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Ошибка HTTP сервера")
		}
	}()

	// === Graceful Shutdown ===

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Получен сигнал завершения, останавливаем сервер...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Ошибка при остановке сервера")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Ошибка остановки Metrics Server")
		}
	}

	if shutdownTracing != nil {
		if err := shutdownTracing(ctx); err != nil {
			logger.Error().Err(err).Msg("Ошибка остановки Tracing")
		}
	}

	logger.Info().Msg("Sales Service остановлен")
}
