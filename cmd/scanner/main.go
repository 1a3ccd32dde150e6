package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"buildhub/config"
	"buildhub/internal/mq"
	"buildhub/internal/repository"
	"buildhub/internal/service"
	"buildhub/pkg/db"
	"buildhub/pkg/logger"
)

// Run-once overdue scan for cron use. The same scan is reachable through the
// server's /scan/overdue endpoint.
func main() {
	projectID := flag.String("project", "", "scan a single project")
	flag.Parse()

	cfg := config.Load()

	zlog := logger.NewLogger()
	defer zlog.Sync()

	loc, err := time.LoadLocation(cfg.Scan.Timezone)
	if err != nil {
		zlog.Fatal("Invalid scan timezone", zap.String("timezone", cfg.Scan.Timezone), zap.Error(err))
	}

	dbConn, err := db.NewConnection(cfg.DB, zlog)
	if err != nil {
		zlog.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		zlog.Fatal("failed to init producer", zap.Error(err))
	}
	defer producer.Close()

	notificationRepo := repository.NewNotificationRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	invoiceRepo := repository.NewInvoiceRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn)

	resolver := service.NewRecipientResolver(userRepo, zlog)
	dispatcher := service.NewDispatcher(notificationRepo, resolver, producer, zlog)
	scanner := service.NewScanner(projectRepo, invoiceRepo, dispatcher, producer, loc, zlog)

	report, err := scanner.Run(context.Background(), time.Now(), *projectID)
	if err != nil {
		zlog.Fatal("Overdue scan failed", zap.Error(err))
	}

	zlog.Info("Scan finished",
		zap.Int("projects", report.Projects),
		zap.Int("notified", report.Notified),
		zap.Int("failed", report.Failed),
	)
}
