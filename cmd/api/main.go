package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"groupchat/config"
	"groupchat/internal/auth"
	"groupchat/internal/domain/friend"
	"groupchat/internal/events"
	"groupchat/internal/handler"
	"groupchat/internal/proxy"
	redisx "groupchat/internal/redis"
	"groupchat/internal/repository"
	"groupchat/internal/server"
	"groupchat/internal/services"
	"groupchat/internal/storage"
	"groupchat/pkg/database"
	"groupchat/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	l := logger.New(cfg.LogMode)
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	friendMode, ok := friend.ParseMode(cfg.FriendshipMode)
	if !ok {
		log.Fatalf("invalid FRIENDSHIP_MODE %q", cfg.FriendshipMode)
	}
	deniedMode, ok := services.ParseDeleteDeniedMode(cfg.DeleteDeniedMode)
	if !ok {
		log.Fatalf("invalid DELETE_DENIED_MODE %q", cfg.DeleteDeniedMode)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := repository.InitSchema(db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiryMin)*time.Minute)
	if err != nil {
		log.Fatalf("Failed to configure tokens: %v", err)
	}

	var bus events.Bus
	if cfg.RedisHost != "" {
		client, err := redisx.Connect(ctx, redisx.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()

		redisBus := events.NewRedisBus(redisx.NewPublisher(client), redisx.NewSubscriber(client), l)
		go func() {
			if err := redisBus.Run(ctx); err != nil {
				l.Error(ctx, "event bus stopped", zap.Error(err))
			}
		}()
		bus = redisBus
	} else {
		l.Infof("REDIS_HOST not set, delivering events in-process")
		bus = events.NewLocalBus(l)
	}

	var objects *storage.Client
	if cfg.S3Bucket != "" {
		objects, err = storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: cfg.S3PresignTTL,
		})
		if err != nil {
			log.Fatalf("Failed to configure s3: %v", err)
		}
	} else {
		l.Infof("S3_BUCKET not set, attachment uploads are disabled")
	}

	store := repository.NewStore(db)
	access := proxy.NewAccessControl(l)

	userService := services.NewUserService(store, l)
	chatService := services.NewChatService(store, access, l)
	messageService := services.NewMessageService(store, access, l, deniedMode)
	attachmentService := services.NewAttachmentService(store, access, objects, cfg.MaxAttachmentBytes, l)
	friendService := services.NewFriendService(store, friendMode, l)
	notificationService := services.NewNotificationService(store, l)
	profileService := services.NewProfileService(store, cfg.ProfileAllowedFields, l)
	publisher := services.NewEventPublisher(bus, l)

	services.NewNotificationConsumer(notificationService, l).Register(bus)

	srv := server.New(cfg, db, l)
	srv.SetupRoutes(&server.Handlers{
		Chats:         handler.NewChatHandler(chatService, publisher),
		Messages:      handler.NewMessageHandler(messageService, attachmentService, publisher, cfg.MaxListLimit),
		Friends:       handler.NewFriendHandler(friendService, userService, publisher),
		Notifications: handler.NewNotificationHandler(notificationService),
		Profiles:      handler.NewProfileHandler(profileService),
	}, tokens, userService)

	if err := srv.Start(ctx); err != nil {
		l.Error(ctx, "server exited", zap.Error(err))
	}
}
