package main

import (
	"context"
	"log"
	"time"

	"collabdesk/config"
	"collabdesk/internal/api"
	"collabdesk/internal/attachments"
	"collabdesk/internal/domain"
	"collabdesk/internal/engine"
	"collabdesk/internal/events"
	"collabdesk/internal/handler"
	"collabdesk/internal/history"
	"collabdesk/internal/lifecycle"
	"collabdesk/internal/notify"
	"collabdesk/internal/platform"
	internalredis "collabdesk/internal/redis"
	"collabdesk/internal/server"
	"collabdesk/internal/storage"
	"collabdesk/internal/store"
	"collabdesk/internal/typing"
	pkgevents "collabdesk/pkg/events"
	"collabdesk/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	defer l.Sync()

	self := domain.Identity{
		ID:     cfg.UserID,
		Name:   cfg.UserName,
		Avatar: cfg.UserAvatar,
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.APIToken, 30*time.Second)
	bus := pkgevents.NewBus()
	host := platform.NewHost()

	messages := store.NewMessageStore()
	conversations := store.NewConversationStore()

	ctx := context.Background()

	var redisClient *goredis.Client
	var seen notify.SeenStore = notify.NewMemorySeenStore()
	redisCfg := internalredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	if redisCfg.Enabled() {
		var err error
		redisClient, err = internalredis.NewClient(ctx, redisCfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		seen = internalredis.NewSeenStore(redisClient, self.ID)
		l.Infof("Redis connected at %s:%s", cfg.RedisHost, cfg.RedisPort)
	}

	var uploader *attachments.Uploader
	s3Cfg := storage.S3Config{
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		Endpoint:   cfg.S3Endpoint,
		PublicBase: cfg.S3PublicBase,
	}
	if s3Cfg.Enabled() {
		s3Client, err := storage.NewClient(ctx, s3Cfg)
		if err != nil {
			log.Fatalf("Failed to initialise object storage: %v", err)
		}
		uploader = attachments.NewUploader(s3Client, self, l.Named("attachments"))
	}

	lifecycleMgr := lifecycle.NewManager(messages, conversations, client, bus, l.Named("lifecycle"), self)
	typingCoord := typing.NewCoordinator(conversations, bus, l.Named("typing"),
		time.Duration(cfg.TypingDebounceMs)*time.Millisecond,
		time.Duration(cfg.TypingRemoteTTLMs)*time.Millisecond)
	loader := history.NewLoader(messages, client, self, l.Named("history"))
	prefs := notify.NewPreferences(client, l.Named("preferences"))

	fanout := notify.NewFanout(
		prefs,
		lifecycleMgr,
		host,
		host,
		seen,
		notify.NewToastChannel(bus),
		notify.NewSoundChannel(bus),
		notify.NewDesktopChannel(notify.NewBusNotifier(bus)),
		bus,
		l.Named("fanout"),
	)
	poller := notify.NewPoller(client, fanout, time.Duration(cfg.PollIntervalSec)*time.Second, l.Named("poller"))

	var source events.Source
	if cfg.EventStreamURL != "" {
		source = events.NewWebSocketSource(cfg.EventStreamURL, cfg.APIToken, l.Named("events"))
	}

	eng := engine.New(engine.Deps{
		Conversations: conversations,
		Messages:      messages,
		Lifecycle:     lifecycleMgr,
		Typing:        typingCoord,
		History:       loader,
		Preferences:   prefs,
		Fanout:        fanout,
		Poller:        poller,
		Client:        client,
		Source:        source,
		Bus:           bus,
		Logger:        l.Named("engine"),
	})

	if err := eng.Start(ctx); err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}
	defer eng.Stop()

	srv := server.New(cfg, l.Named("http"))
	srv.SetupRoutes(&server.Handlers{
		Conversations: handler.NewConversationHandler(eng),
		Messages:      handler.NewMessageHandler(eng),
		Notifications: handler.NewNotificationHandler(eng, host),
		Attachments:   handler.NewAttachmentHandler(uploader),
	}, func(ctx context.Context) error {
		if redisClient != nil {
			return redisClient.Ping(ctx).Err()
		}
		return nil
	})

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
