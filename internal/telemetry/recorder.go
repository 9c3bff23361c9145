// README: Fire-and-forget analytics sink for surge and health records.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// SurgeRecord is one computed surge observation.
type SurgeRecord struct {
	Lat        float64
	Lng        float64
	Multiplier float64
	Supply     int
	Demand     int
	At         time.Time
}

// HealthRecord is one health-metrics observation.
type HealthRecord struct {
	Supply       int
	Demand       int
	AverageSurge float64
	Stable       bool
	At           time.Time
}

// Recorder receives observations after the pure computation has finished.
// Implementations must never block the caller and must swallow their own
// failures; a broken sink cannot be allowed to affect a quote response.
type Recorder interface {
	RecordSurge(rec SurgeRecord)
	RecordHealth(rec HealthRecord)
}

const (
	surgeStream  = "telemetry:surge"
	healthStream = "telemetry:health"
	streamMaxLen = 10000
	writeTimeout = 2 * time.Second
)

// RedisRecorder appends observations to capped Redis streams.
type RedisRecorder struct {
	redis *redis.Client
}

func NewRedisRecorder(client *redis.Client) *RedisRecorder {
	return &RedisRecorder{redis: client}
}

func (r *RedisRecorder) RecordSurge(rec SurgeRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		err := r.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: surgeStream,
			MaxLen: streamMaxLen,
			Approx: true,
			Values: map[string]interface{}{
				"lat":        rec.Lat,
				"lng":        rec.Lng,
				"multiplier": rec.Multiplier,
				"supply":     rec.Supply,
				"demand":     rec.Demand,
				"at":         rec.At.UTC().Format(time.RFC3339),
			},
		}).Err()
		if err != nil {
			log.Printf("telemetry: surge record dropped: %v", err)
		}
	}()
}

func (r *RedisRecorder) RecordHealth(rec HealthRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		err := r.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: healthStream,
			MaxLen: streamMaxLen,
			Approx: true,
			Values: map[string]interface{}{
				"supply":        rec.Supply,
				"demand":        rec.Demand,
				"average_surge": rec.AverageSurge,
				"stable":        rec.Stable,
				"at":            rec.At.UTC().Format(time.RFC3339),
			},
		}).Err()
		if err != nil {
			log.Printf("telemetry: health record dropped: %v", err)
		}
	}()
}

// Nop discards all observations. Used in tests and when Redis is absent.
type Nop struct{}

func (Nop) RecordSurge(SurgeRecord)   {}
func (Nop) RecordHealth(HealthRecord) {}
