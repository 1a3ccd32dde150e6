package main

import (
	"context"
	"log"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"buildhub/config"
	"buildhub/internal/api"
	"buildhub/internal/mq"
	"buildhub/internal/repository"
	"buildhub/internal/service"
	"buildhub/pkg/db"
	"buildhub/pkg/logger"
	"buildhub/pkg/redis"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	zlog := logger.NewLogger()
	defer zlog.Sync()

	loc, err := time.LoadLocation(cfg.Scan.Timezone)
	if err != nil {
		zlog.Fatal("Invalid scan timezone", zap.String("timezone", cfg.Scan.Timezone), zap.Error(err))
	}

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, zlog)
	if err != nil {
		zlog.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 3. Init Redis
	rdb := redis.NewRedisClient(cfg.Redis)

	// 4. Init RabbitMQ producer
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		log.Fatalf("failed to init producer: %v", err)
	}
	defer producer.Close()

	// 5. Init AWS clients
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		zlog.Fatal("AWS config failed", zap.Error(err))
	}
	snsClient := sns.NewFromConfig(awsCfg)
	sesClient := ses.NewFromConfig(awsCfg)

	// 6. Init repositories
	notificationRepo := repository.NewNotificationRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	invoiceRepo := repository.NewInvoiceRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn)

	// 7. Init services
	resolver := service.NewRecipientResolver(userRepo, zlog)
	dispatcher := service.NewDispatcher(notificationRepo, resolver, producer, zlog)
	scanner := service.NewScanner(projectRepo, invoiceRepo, dispatcher, producer, loc, zlog)
	feed := service.NewFeed(notificationRepo, zlog)
	pushRelay := service.NewPushRelay(userRepo, snsClient, zlog)
	mailer := service.NewMailer(sesClient, cfg.AWS.FromEmail)

	// 8. Consume notification.created for live feed delivery
	consumer, err := mq.NewConsumer(cfg.MQ.URL, mq.EventNotificationCreated, zlog)
	if err != nil {
		log.Fatalf("failed to init consumer: %v", err)
	}
	defer consumer.Close()
	consumer.SetHandler(feed.HandleNotificationCreated)

	// Start consumer in goroutine (StartConsuming blocks)
	go func() {
		if err := consumer.StartConsuming(); err != nil {
			zlog.Fatal("consumer start failed", zap.Error(err))
		}
	}()

	// 9. Init handlers
	limiter := api.NewRateLimiter(rdb, "api", cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second, zlog)
	notificationHandler := api.NewNotificationHandler(dispatcher, feed, userRepo, projectRepo)
	scanHandler := api.NewScanHandler(scanner)
	pushHandler := api.NewPushHandler(pushRelay)
	emailHandler := api.NewEmailHandler(mailer)

	// 10. Init router and run
	router := api.NewRouter(notificationHandler, scanHandler, pushHandler, emailHandler, limiter, cfg.JWT.Secret)
	if err := router.Run(cfg.Server.Port); err != nil {
		zlog.Fatal("server start failed", zap.Error(err))
	}
}
