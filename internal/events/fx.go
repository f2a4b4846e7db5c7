package events

import (
	"context"

	"github.com/smallbiznis/branchops/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(NewPublisher),
)

func NewPublisher(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Publisher {
	if !cfg.Kafka.Enabled() {
		log.Info("kafka not configured, membership events disabled")
		return NewNoop()
	}
	pub := NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	})
	return pub
}
