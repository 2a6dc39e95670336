package bootstrap

import (
	"context"
	"log"

	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/controller"
	"realtime-chat-be/internal/handler"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/pkg/mailer"
	"realtime-chat-be/internal/repository/cache"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/internal/service"
	"realtime-chat-be/internal/websocket"

	pktNats "realtime-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	UserController controller.IUserController
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	SocketHandler *handler.SocketHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Hot-path cache, backend selected by config.
	var profileCache cache.ProfileCache
	if cfg.App.CacheBackend == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		profileCache = cache.NewRedisProfileCache(rdb)
		log.Printf("[INFO] Using profile cache backend: REDIS")
	} else {
		profileCache = cache.NewMemoryProfileCache()
		log.Printf("[INFO] Using profile cache backend: MEMORY")
	}

	// 3. Services
	publisherService := service.NewPublisherService(cfg.App.BroadcastTopic, pubSub)

	authService := service.NewAuthService(uowFactory, emailService, natsPub)
	userService := service.NewUserService(uowFactory)
	chatService := service.NewChatService(uowFactory, profileCache, natsPub)
	messageService := service.NewMessageService(uowFactory, profileCache, publisherService, natsPub)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.SocketLogFilePath)
	registry := websocket.NewRegistry()
	wsHub := websocket.NewHub(registry, chatService, messageService, wsLogger)
	go wsHub.Run()

	// Committed messages flow through the broadcast topic into the hub.
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.BroadcastTopic,
		wsHub,
		sysLogger,
	)

	// Activity nudges for online participants outside the room.
	if natsSub != nil {
		notifService := service.NewNotificationService(uowFactory, profileCache, natsSub, wsHub, sysLogger)
		go notifService.Start()
	}

	socketHandler := handler.NewSocketHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		UserController: controller.NewUserController(userService),
		ChatController: controller.NewChatController(chatService, messageService),

		ConsumerService: consumerService,

		SocketHandler: socketHandler,
		WebSocketHub:  wsHub,
	}
}
