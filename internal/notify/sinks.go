package notify

import (
	"context"
	"io"

	"ridebooking/internal/config"
	"ridebooking/internal/google"
	"ridebooking/internal/worker"

	"github.com/rs/zerolog"
)

// BuildSinks creates every sink that has enough configuration to run.
// A sink that fails to start is logged and skipped; bookings never depend on it.
func BuildSinks(ctx context.Context, cfg config.NotifyConfig, logger *zerolog.Logger) ([]worker.Sink, []io.Closer) {
	var (
		sinks   []worker.Sink
		closers []io.Closer
	)

	if cfg.Telegram.BotToken != "" {
		if s, err := NewTelegramSink(cfg.Telegram); err != nil {
			logger.Warn().Err(err).Msg("telegram notifications disabled")
		} else {
			sinks = append(sinks, s)
		}
	}

	if cfg.Sheets.CredentialsFile != "" && cfg.Sheets.SpreadsheetID != "" {
		if s, err := google.NewSheetsSink(ctx, cfg.Sheets); err != nil {
			logger.Warn().Err(err).Msg("google sheets export disabled")
		} else {
			sinks = append(sinks, s)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		s := NewKafkaSink(cfg.Kafka)
		sinks = append(sinks, s)
		closers = append(closers, s)
	}

	if cfg.AMQP.URL != "" {
		if s, err := NewAMQPSink(cfg.AMQP); err != nil {
			logger.Warn().Err(err).Msg("rabbitmq notifications disabled")
		} else {
			sinks = append(sinks, s)
			closers = append(closers, s)
		}
	}

	for _, s := range sinks {
		logger.Info().Str("sink", s.Name()).Msg("notification sink enabled")
	}
	return sinks, closers
}
