package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SiwoTech/asistencias/internal/events"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const pendingAuthorizationTTL = 48 * time.Hour

// ConsumeLateArrivals maintains the per-day set of punches waiting for
// an administrator's authorization. The admin panel reads the set to
// badge pending reviews without scanning the attendance table.
func ConsumeLateArrivals(
	ctx context.Context,
	reader *kafkago.Reader,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.late_arrival")
	log.Info("late arrival consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("late arrival consumer stopped")
				return
			}
			log.Error("fetch late arrival message failed", zap.Error(err))
			continue
		}

		var event events.LateArrivalEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode late arrival event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		key := "autorizaciones:pendientes:" + event.Fecha
		if err := rdb.SAdd(ctx, key, event.EmpleadoID).Err(); err != nil {
			log.Error("register pending authorization failed",
				zap.String("empleado_id", event.EmpleadoID),
				zap.String("fecha", event.Fecha),
				zap.Error(err),
			)
			continue
		}
		_ = rdb.Expire(ctx, key, pendingAuthorizationTTL).Err()

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit late arrival message failed", zap.Error(err))
			continue
		}

		log.Info("authorization request registered",
			zap.String("empleado_id", event.EmpleadoID),
			zap.String("empleado", event.EmpleadoNombre),
			zap.String("fecha", event.Fecha),
			zap.String("hora", event.Hora),
		)
	}
}
