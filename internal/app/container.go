// Package app assembles the dependency graph shared by the HTTP server and the Lambda
// entry point.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/dispute-portal/internal/api/http"
	"github.com/spec-kit/dispute-portal/internal/api/http/handlers"
	"github.com/spec-kit/dispute-portal/internal/auth"
	"github.com/spec-kit/dispute-portal/internal/awsutil"
	"github.com/spec-kit/dispute-portal/internal/config"
	"github.com/spec-kit/dispute-portal/internal/events"
	"github.com/spec-kit/dispute-portal/internal/normalize"
	"github.com/spec-kit/dispute-portal/internal/observability"
	"github.com/spec-kit/dispute-portal/internal/persistence"
	"github.com/spec-kit/dispute-portal/internal/repository"
	"github.com/spec-kit/dispute-portal/internal/rowstore"
	"github.com/spec-kit/dispute-portal/internal/service"
	"github.com/spec-kit/dispute-portal/internal/session"
	"github.com/spec-kit/dispute-portal/internal/sheetapi"
	"github.com/spec-kit/dispute-portal/internal/storage"
	"github.com/spec-kit/dispute-portal/internal/worker"
)

// Container holds every long-lived dependency.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	Store      rowstore.Store
	Normalizer *normalize.Normalizer
	Postgres   *persistence.Postgres
	Redis      *persistence.Redis
	Sessions   session.Store
	Tokens     *auth.TokenManager

	Dispatcher events.Dispatcher
	Kafka      *events.KafkaPublisher
	Forwarder  *worker.EventForwarder

	Disputes      *service.DisputeService
	Auth          *service.AuthService
	Attachments   *service.AttachmentService
	Notifications *service.NotificationService
	Gateway       *sheetapi.Gateway

	awsConfig *aws.Config
}

// New builds the container from configuration. Callers must Close it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
		Normalizer: normalize.New(cfg.Schema),
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		Dispatcher: events.NewInMemoryDispatcher(),
	}

	store, err := c.buildStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store

	c.Redis = persistence.NewRedis(cfg.Redis, logger)
	if c.Redis.Client != nil {
		c.Sessions = session.NewRedisStore(c.Redis.Client)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("kafka publisher: %w", err)
		}
		c.Kafka = publisher
		c.Forwarder = worker.NewEventForwarder(publisher, 0, logger)
	}

	if cfg.AWS.AttachmentBucket != "" {
		awsConf, err := c.aws(ctx)
		if err != nil {
			c.Close()
			return nil, err
		}
		presigner := storage.NewPresigner(awsConf, awsutil.UsesCustomEndpoint(cfg.AWS))
		c.Attachments = service.NewAttachmentService(service.AttachmentDependencies{
			Presigner: presigner,
			Uploads:   repository.NewAttachmentRepository(c.Store, cfg.RowStore.AttachmentsTable),
			Bucket:    cfg.AWS.AttachmentBucket,
			TTL:       cfg.AWS.PresignTTL(),
			Logger:    logger,
		})
	}

	c.wireServices()

	if cfg.App.DemoSeed && cfg.RowStore.Backend == config.BackendMemory {
		if err := SeedDemo(ctx, c.Store, c.Normalizer, cfg.RowStore); err != nil {
			c.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("seeded demo dataset")
	}
	return c, nil
}

func (c *Container) buildStore(ctx context.Context) (rowstore.Store, error) {
	cfg := c.Config
	switch cfg.RowStore.Backend {
	case config.BackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		c.Postgres = pg
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), c.Logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return rowstore.NewPostgresStore(pg.PoolHandle()), nil
	case config.BackendDynamo:
		awsConf, err := c.aws(ctx)
		if err != nil {
			return nil, err
		}
		return rowstore.NewDynamoStore(dynamodb.NewFromConfig(awsConf), cfg.Dynamo.Table), nil
	case config.BackendRemote:
		return rowstore.NewRemoteStore(cfg.RowStore.RemoteURL, cfg.RowStore.RemoteTimeout()), nil
	default:
		return rowstore.NewMemoryStore(), nil
	}
}

func (c *Container) aws(ctx context.Context) (aws.Config, error) {
	if c.awsConfig != nil {
		return *c.awsConfig, nil
	}
	awsConf, err := awsutil.Load(ctx, c.Config.AWS)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	c.awsConfig = &awsConf
	return awsConf, nil
}

func (c *Container) wireServices() {
	cfg := c.Config
	c.Disputes = service.NewDisputeService(service.DisputeDependencies{
		DisputeRepo: repository.NewDisputeRepository(c.Store, c.Normalizer, cfg.RowStore.DisputeTables),
		Normalizer:  c.Normalizer,
		Dispatcher:  c.Dispatcher,
		Logger:      c.Logger,
	})

	c.Auth = service.NewAuthService(service.AuthDependencies{
		CredentialRepo: repository.NewCredentialRepository(c.Store, c.Normalizer, cfg.RowStore.CredentialsTable),
		ActivityRepo:   repository.NewActivityRepository(c.Store, cfg.RowStore.ActivityTable),
		Tokens:         c.Tokens,
		Sessions:       c.Sessions,
		DemoLogins:     cfg.Auth.DemoLogins,
		Logger:         c.Logger,
	})

	var forwarder service.Forwarder
	if c.Forwarder != nil {
		forwarder = c.Forwarder
	}
	c.Notifications = service.NewNotificationService(c.Dispatcher, forwarder, c.Logger, cfg.Notification)
	worker.StartNotificationWorker(c.Notifications)

	c.Gateway = sheetapi.NewGateway(sheetapi.Dependencies{
		Store:        c.Store,
		Disputes:     c.Disputes,
		Auth:         c.Auth,
		PrimaryTable: cfg.RowStore.PrimaryTable(),
		Logger:       c.Logger,
	})
}

// Start launches background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	if c.Forwarder != nil {
		c.Forwarder.Start(ctx)
	}
}

// NewFiberApp builds the HTTP application serving the portal API and the row-store
// endpoint.
func (c *Container) NewFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               c.Config.App.Name,
		DisableStartupMessage: true,
		ErrorHandler:          httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, c.Logger, c.Metrics, c.Config.App.RequestTimeout(), c.Config.CORS)

	routes := httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(c.Config.App.Name, c.Config.App.Version, c.readinessChecks(), c.Metrics),
		Auth:           handlers.NewAuthHandler(c.Auth),
		Disputes:       handlers.NewDisputesHandler(c.Disputes),
		Dashboard:      handlers.NewDashboardHandler(c.Disputes),
		Sheet:          sheetapi.NewHandler(c.Gateway),
		AuthMiddleware: auth.NewAuthMiddleware(c.Tokens, c.Sessions),
	}
	if c.Attachments.Enabled() {
		routes.Attachments = handlers.NewAttachmentsHandler(c.Attachments)
	}
	httptransport.RegisterRoutes(app, routes)
	return app
}

func (c *Container) readinessChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{}
	if c.Postgres != nil && c.Postgres.Pool != nil {
		checks["postgres"] = c.Postgres
	}
	if c.Redis != nil && c.Redis.Client != nil {
		checks["redis"] = c.Redis
	}
	return checks
}

// Close releases every resource. It waits for the event forwarder to drain when it was
// started with a context that has since been cancelled.
func (c *Container) Close() {
	if c.Forwarder != nil {
		done := make(chan struct{})
		go func() {
			c.Forwarder.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(15 * time.Second):
			c.Logger.Warn("event forwarder did not drain in time")
		}
	}
	if c.Kafka != nil {
		if err := c.Kafka.Close(); err != nil {
			c.Logger.Warn("close kafka publisher", zap.Error(err))
		}
	}
	c.Redis.Close()
	c.Postgres.Close()
}
