package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	_ "github.com/shenikar/fleet_location_core/docs"
	"github.com/shenikar/fleet_location_core/internal/broadcast"
	"github.com/shenikar/fleet_location_core/internal/config"
	"github.com/shenikar/fleet_location_core/internal/events"
	v1 "github.com/shenikar/fleet_location_core/internal/handler/http/v1"
	"github.com/shenikar/fleet_location_core/internal/handler/ws"
	"github.com/shenikar/fleet_location_core/internal/ingest"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/repository"
	"github.com/shenikar/fleet_location_core/internal/service"
	"github.com/shenikar/fleet_location_core/internal/softfail"
	"github.com/shenikar/fleet_location_core/internal/traffic"
	"github.com/shenikar/fleet_location_core/internal/webhook"
	"github.com/shenikar/fleet_location_core/pkg/kafka"
	"github.com/shenikar/fleet_location_core/pkg/logger"
	"github.com/shenikar/fleet_location_core/pkg/mqtt"
	"github.com/shenikar/fleet_location_core/pkg/postgres"
	"github.com/shenikar/fleet_location_core/pkg/rabbitmq"
	redisclient "github.com/shenikar/fleet_location_core/pkg/redis"
)

// @title Fleet Location Core API
// @version 1.0
// @description Real-time position tracking, geofencing and ETA service for fleet entities.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New("file://migrations", migrationURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// positionsProxy разрывает цикл hub -> сервис -> hub: источник снимков
// подставляется после создания сервиса положений
type positionsProxy struct {
	svc service.PositionService
}

func (p *positionsProxy) GetCurrentPositions(ctx context.Context, refs []models.EntityRef) ([]*models.Position, error) {
	return p.svc.GetCurrentPositions(ctx, refs)
}

func (p *positionsProxy) GetNearbyEntities(ctx context.Context, q models.NearbyQuery) ([]*models.EntityPosition, error) {
	return p.svc.GetNearbyEntities(ctx, q)
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	db := postgres.OpenDB(dbpool)
	defer db.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	sink := softfail.NewLogSink(log)

	// Инициализация репозиториев
	positionRepo := repository.NewPositionRepository(db, cfg.PostGISEnabled, cfg.Tuning.Significance())
	geofenceRepo := repository.NewGeofenceRepository(db, cfg.PostGISEnabled)
	positionCache := repository.NewPositionCache(redisClient, cfg.Tuning.PositionCacheTTL)
	geofenceStates := repository.NewGeofenceStateStore(redisClient, cfg.Tuning.GeofenceStateTTL)
	etaCache := repository.NewETACache(redisClient, cfg.Tuning.ETACacheTTL)
	drivers := repository.NewDriverBehaviorStore(redisClient)

	// Живая рассылка: локальный hub, при нескольких репликах через Redis pub/sub
	proxy := &positionsProxy{}
	hub := broadcast.NewHub(proxy, log, sink, cfg)
	var broadcaster service.LiveBroadcaster = hub
	var relay *broadcast.Relay
	if cfg.LiveRelay == "redis" {
		relay = broadcast.NewRelay(redisClient, hub, log)
		broadcaster = relay
	}

	opts := []service.PositionOption{
		service.WithBroadcaster(broadcaster),
		service.WithSoftFailSink(sink),
	}
	if cfg.WebhookURL != "" {
		opts = append(opts, service.WithWebhookPublisher(webhook.NewRedisWebhookPublisher(redisClient)))
	}
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.NewConnection(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer conn.Close()
		publisher, err := events.NewGeofencePublisher(conn)
		if err != nil {
			log.Fatalf("Failed to set up geofence event exchange: %v", err)
		}
		defer publisher.Close()
		opts = append(opts, service.WithEventPublisher(publisher))
		log.Info("Geofence events are published to RabbitMQ")
	}

	// Инициализация сервисов
	detector := service.NewGeofenceDetector(geofenceRepo, geofenceStates, log, sink, cfg)
	positionService := service.NewPositionService(positionRepo, positionCache, detector, log, cfg, opts...)
	proxy.svc = positionService

	var trafficProvider service.TrafficProvider
	if cfg.TrafficAPIURL != "" {
		trafficProvider = traffic.NewClient(cfg.TrafficAPIURL, cfg.TrafficAPITimeout, log)
	}
	etaService := service.NewETAService(positionService, positionRepo, etaCache, trafficProvider, drivers, log, sink, cfg)
	geofenceService := service.NewGeofenceService(geofenceRepo, log)

	// Потоковый прием положений
	batcher := ingest.NewBatcher(positionService, log, sink, cfg)
	batcher.Start()
	probes := make(map[string]v1.ReadinessProbe)

	g, gctx := errgroup.WithContext(ctx)

	if len(cfg.KafkaBrokers) > 0 {
		consumer := ingest.NewKafkaConsumer(func() ingest.MessageReader {
			return kafka.NewReader(cfg.KafkaBrokers, cfg.KafkaPositionTopic, cfg.KafkaGroupID)
		}, batcher, log)
		probes["kafka"] = consumer
		g.Go(func() error {
			// Остановившийся потребитель виден в /system/health, сервис продолжает работать
			if err := consumer.Run(gctx); err != nil {
				log.WithError(err).Error("Kafka consumer stopped")
			}
			return nil
		})
	}
	if cfg.MQTTBroker != "" {
		consumer := ingest.NewMQTTConsumer(func(onLost pahomqtt.ConnectionLostHandler) (pahomqtt.Client, error) {
			return mqtt.NewClient(cfg.MQTTBroker, cfg.MQTTClientID, onLost)
		}, cfg.MQTTTopic, batcher, log)
		probes["mqtt"] = consumer
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil {
				log.WithError(err).Error("MQTT consumer stopped")
			}
			return nil
		})
	}

	g.Go(func() error { return hub.Run(gctx) })
	if relay != nil {
		g.Go(func() error { return relay.Run(gctx) })
	}

	// Инициализация и запуск воркера вебхуков
	if cfg.WebhookURL != "" {
		webhook.NewWebhookWorker(redisClient, log, cfg).Start(gctx)
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(positionService, etaService, geofenceService, probes, log, cfg)
	liveHandler := ws.NewHandler(hub, log)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterSystemRoutes(api)
	protected := api.Group("")
	protected.Use(v1.APIKeyAuthMiddleware(cfg, log))
	handler.RegisterRoutes(protected)
	router.GET("/ws/live", v1.APIKeyAuthMiddleware(cfg, log), liveHandler.Serve)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: router,
	}

	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Service stopped with error")
	}

	// Остаток пачки дописывается после остановки потребителей
	batcher.Close()
	log.Info("Server gracefully stopped")
}
