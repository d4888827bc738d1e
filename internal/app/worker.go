package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SiwoTech/asistencias/internal/attendance"
	"github.com/SiwoTech/asistencias/internal/autocheckout"
	autocheckouterrors "github.com/SiwoTech/asistencias/internal/autocheckout/errors"
	"github.com/SiwoTech/asistencias/internal/employee"
	"github.com/SiwoTech/asistencias/internal/messaging/kafka"
	"github.com/SiwoTech/asistencias/internal/messaging/kafka/producer"
	"github.com/SiwoTech/asistencias/internal/shared/config"
	"github.com/SiwoTech/asistencias/internal/shared/connection"

	"go.uber.org/zap"
)

const sweepInterval = 2 * time.Minute

// RunWorker hosts the background loops: the outbox relay that drains
// pending events into Kafka and the auto checkout sweeper.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	employeeRepo := employee.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	autocheckoutRepo := autocheckout.NewRepository(gormDB)
	cfgStore := config.NewStore(gormDB)
	sweeper := autocheckout.NewService(sqlDB, autocheckoutRepo, attendanceRepo, employeeRepo, outboxRepo, cfgStore, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go runSweeper(ctx, sweeper, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

func runSweeper(ctx context.Context, sweeper autocheckout.Service, logger *zap.Logger) {
	log := logger.Named("autocheckout.sweeper")

	sweep := func() {
		result, err := sweeper.Process(ctx)
		if err != nil {
			if errors.Is(err, autocheckouterrors.ErrSweepInProgress) {
				return
			}
			log.Error("sweep failed", zap.Error(err))
			return
		}
		if result.Procesados > 0 {
			log.Info("sweep closed open records",
				zap.String("fecha", result.Fecha),
				zap.Int("revisados", result.Revisados),
				zap.Int("procesados", result.Procesados),
			)
		}
	}

	// First pass right away so restarts do not wait a full interval.
	sweep()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
