package bootstrap

import (
	"context"
	"log"

	"legal-annotation-be/internal/config"
	"legal-annotation-be/internal/controller"
	"legal-annotation-be/internal/handler"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/repository/memory"
	"legal-annotation-be/internal/repository/unitofwork"
	"legal-annotation-be/internal/service"
	"legal-annotation-be/internal/websocket"
	"legal-annotation-be/pkg/embedding"
	"legal-annotation-be/pkg/events"

	pktNats "legal-annotation-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const realtimeDurable = "realtime-delivery"

type Container struct {
	// Controllers
	AnnotationController controller.IAnnotationController
	DocumentController   controller.IDocumentController
	AuthoringController  controller.IAuthoringController
	UsageController      controller.IUsageController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	RealtimeService *service.RealtimeService

	// WebSockets
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 2. Job Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	embeddingProvider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)

	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	eventPublisher, eventSubscriber, busClosers := newEventBus(cfg)
	c.closers = append(c.closers, busClosers...)

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Websocket delivery is local only", err)
		_ = rdb.Close()
		rdb = nil
	} else {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.WebSocketLogPath)
	wsHub := websocket.NewHub(rdb, cfg.Realtime.ClusterChannel, wsLogger)

	// 4. Services
	usageService := service.NewUsageService(uowFactory, sysLogger)
	publisherService := service.NewPublisherService(pubSub, cfg.Ai.EmbedTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ai.EmbedTopic,
		uowFactory,
		embeddingProvider,
		sysLogger,
	)

	annotationService := service.NewAnnotationService(
		uowFactory,
		usageService,
		publisherService,
		eventPublisher,
		sysLogger,
		cfg.Annotation.MinShapeSize,
	)
	commentService := service.NewCommentService(uowFactory, eventPublisher, sysLogger)
	shareService := service.NewShareService(uowFactory, usageService, eventPublisher, sysLogger)
	searchService := service.NewSearchService(
		uowFactory,
		usageService,
		embeddingProvider,
		sysLogger,
		cfg.Ai.SearchLimit,
		cfg.Ai.SimilarityThreshold,
	)
	documentService := service.NewDocumentService(uowFactory, usageService, eventPublisher, sysLogger)

	sessionRepo := memory.NewSessionRepository(cfg.Annotation.SessionTTL)
	authoringService := service.NewAuthoringService(
		uowFactory,
		annotationService,
		sessionRepo,
		wsHub, // Hub implements Delivery
		sysLogger,
		cfg.Annotation.MinShapeSize,
	)
	wsHub.SetInboundHandler(authoringService)

	realtimeService := service.NewRealtimeService(eventSubscriber, wsHub, authoringService, realtimeDurable, wsLogger)

	// 5. Controllers
	c.AnnotationController = controller.NewAnnotationController(annotationService, commentService, shareService, searchService)
	c.DocumentController = controller.NewDocumentController(documentService, cfg.Keys.WorkerToken)
	c.AuthoringController = controller.NewAuthoringController(authoringService)
	c.UsageController = controller.NewUsageController(usageService)
	c.RealtimeHandler = handler.NewRealtimeHandler(documentService, wsHub, wsLogger)
	c.WebSocketHub = wsHub
	c.ConsumerService = consumerService
	c.RealtimeService = realtimeService

	return c
}

// newEventBus connects to NATS, falling back to in-process delivery when
// no server is reachable.
func newEventBus(cfg *config.Config) (events.Publisher, service.EventSubscriber, []func()) {
	natsConn, err := pktNats.Connect(cfg.App.NatsURL, cfg.Realtime.EventStream)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS: %v. Events stay in this process", err)
		loopback := pktNats.NewLoopback()
		return loopback, loopback, nil
	}
	natsSub := pktNats.NewSubscriber(natsConn)
	return pktNats.NewPublisher(natsConn), natsSub, []func(){natsSub.Stop, natsConn.Close}
}

// Start runs the background workers until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	if err := c.RealtimeService.Start(ctx); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Realtime delivery unavailable", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// Close releases broker and cache connections in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
