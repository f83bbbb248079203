package bootstrap

import (
	"context"
	"log"
	"time"

	"inspection-be/internal/config"
	"inspection-be/internal/controller"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/metrics"
	"inspection-be/internal/repository/contract"
	"inspection-be/internal/repository/implementation"
	"inspection-be/internal/repository/memory"
	"inspection-be/internal/repository/rediskv"
	"inspection-be/internal/repository/unitofwork"
	"inspection-be/internal/service"
	"inspection-be/internal/websocket"
	"inspection-be/pkg/storage"
	"inspection-be/pkg/whatsapp"

	pktNats "inspection-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	checklistCacheTTL   = 30 * time.Minute
	webhookConcurrency  = 8
	progressLogFilePath = "logs/progress.log"
)

type Container struct {
	// Controllers
	WebhookController      controller.IWebhookController
	AdminSessionController controller.IAdminSessionController

	// Background Services (Exposed for main.go to run)
	WebhookConsumer service.IWebhookConsumerService
	StatusService   *service.WorkOrderStatusService

	// WebSockets
	WebSocketHub *websocket.Hub

	Logger logger.ILogger

	natsConn  *nats.Conn
	natsPub   *pktNats.Publisher
	natsSub   *pktNats.Subscriber
	rdb       *redis.Client
	pubSub    *gochannel.GoChannel
	auditLog  logger.ILogger
	asyncMode bool
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	c.Logger = sysLogger
	c.auditLog = auditLogger

	// 2. Infrastructure
	// Redis
	var shared redis.UniversalClient
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
			rdb.Close()
		} else {
			c.rdb = rdb
			shared = rdb
		}
	}

	// NATS
	if cfg.App.NatsURL != "" {
		nc, err := pktNats.Connect(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS: %v", err)
		} else {
			c.natsConn = nc
			if c.natsPub, err = pktNats.NewPublisher(nc); err != nil {
				log.Printf("[WARN] Failed to create NATS Publisher: %v", err)
			}
			if c.natsSub, err = pktNats.NewSubscriber(nc); err != nil {
				log.Printf("[WARN] Failed to create NATS Subscriber: %v", err)
			}
		}
	}

	// Session + dedup stores
	var sessions contract.SessionRepository
	var dedup contract.DedupRepository
	if cfg.Session.Backend == "redis" && shared != nil {
		sessions = rediskv.NewSessionRepository(shared, cfg.Session.TTL)
		dedup = rediskv.NewDedupRepository(shared, cfg.WhatsApp.DedupTTL)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		if cfg.Session.Backend == "redis" {
			log.Printf("[WARN] Session backend redis requested but Redis is unavailable, falling back to memory")
		}
		sessions = memory.NewSessionRepository(cfg.Session.TTL)
		dedup = memory.NewDedupRepository(cfg.WhatsApp.DedupTTL)
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// Media storage
	mediaStore := newMediaStorage(ctx, cfg.Storage)

	// WebSocket Hub
	wsHub := websocket.NewHub(shared, logger.NewIsolatedLogger(progressLogFilePath), m)
	go wsHub.Run(ctx)
	c.WebSocketHub = wsHub

	// 3. Repositories
	inspectors := implementation.NewInspectorRepository(db)
	workOrders := implementation.NewWorkOrderRepository(db)
	locations := implementation.NewLocationRepository(db)
	checklists := implementation.NewChecklistRepository(db)
	entries := implementation.NewTaskEntryRepository(db)

	// 4. Services
	gateway := whatsapp.NewClient(cfg.WhatsApp.SendURL(), cfg.WhatsApp.GatewayToken, cfg.WhatsApp.GatewayTimeout).
		TrustMediaHosts(cfg.WhatsApp.MediaAuthHosts...)

	identity := service.NewIdentityResolver(inspectors, inspectors, sessions, sysLogger, m)
	checklist := service.NewChecklistResolver(workOrders, locations, checklists, entries, checklistCacheTTL, sysLogger, m)
	media := service.NewMediaService(gateway, mediaStore, sysLogger)
	notifier := service.NewNotifier(gateway, cfg.WhatsApp.MessageCharLimit, sysLogger, m)

	// Work order status follows the event stream. Without NATS it is fed directly.
	c.StatusService = service.NewWorkOrderStatusService(workOrders, c.natsSub, sysLogger)
	sinks := []service.EventSink{wsHub}
	if c.natsPub != nil {
		sinks = append(sinks, c.natsPub)
	}
	if c.natsSub == nil {
		sinks = append(sinks, c.StatusService)
	}
	publisher := service.NewProgressPublisher(sysLogger, sinks...)

	conversation := service.NewConversationService(
		uowFactory,
		workOrders,
		sessions,
		dedup,
		identity,
		checklist,
		media,
		notifier,
		publisher,
		sysLogger,
		auditLogger,
		m,
	)

	// Event Bus for async webhook handling
	c.pubSub = gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.WebhookConsumer = service.NewWebhookConsumerService(c.pubSub, service.WebhookTopic, conversation, webhookConcurrency, sysLogger)
	c.asyncMode = cfg.WhatsApp.AsyncProcessing

	var queue service.IWebhookQueue
	if c.asyncMode {
		queue = c.WebhookConsumer
	}

	adminService := service.NewSessionAdminService(sessions, checklist, notifier, auditLogger, sysLogger)

	// 5. Controllers
	c.WebhookController = controller.NewWebhookController(
		conversation,
		queue,
		cfg.WhatsApp.VerifyToken,
		cfg.WhatsApp.WebhookSecret,
		c.asyncMode,
		sysLogger,
	)
	c.AdminSessionController = controller.NewAdminSessionController(adminService, wsHub, cfg.Auth.JWTSecret, sysLogger)

	return c
}

// Start launches the background workers.
func (c *Container) Start(ctx context.Context) error {
	if c.asyncMode {
		if err := c.WebhookConsumer.Consume(ctx); err != nil {
			return err
		}
		c.Logger.Info("Bootstrap", "Webhook consumer started", map[string]interface{}{"topic": service.WebhookTopic})
	}
	if err := c.StatusService.Start(ctx); err != nil {
		return err
	}
	return nil
}

// Close drains in-flight work, then releases connections.
func (c *Container) Close() {
	if err := c.pubSub.Close(); err != nil {
		c.Logger.Warn("Bootstrap", "Failed to close webhook queue", map[string]interface{}{"error": err.Error()})
	}
	c.WebhookConsumer.Wait()

	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	} else if c.natsConn != nil {
		c.natsConn.Close()
	}
	if c.rdb != nil {
		c.rdb.Close()
	}

	c.auditLog.Sync()
	c.Logger.Sync()
}

func newMediaStorage(ctx context.Context, cfg config.StorageConfig) storage.MediaStorage {
	if cfg.Backend == "s3" {
		s3Store, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.S3Prefix,
		})
		if err == nil {
			log.Printf("[INFO] Using Media Storage: S3 (%s)", cfg.S3Bucket)
			return s3Store
		}
		log.Printf("[WARN] Failed to initialize S3 storage: %v. Falling back to local", err)
	}

	log.Printf("[INFO] Using Media Storage: LOCAL (%s)", cfg.UploadDir)
	return storage.NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL)
}
