package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"captionburn/shared/kafka"
	"captionburn/worker"

	"github.com/spf13/cobra"
)

func newConsumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Consume export requests from Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := ctx.buildServices(runCtx, nil)
			if err != nil {
				return err
			}
			tracker, err := ctx.tracker(runCtx, s)
			if err != nil {
				return err
			}

			producer, err := kafka.NewProducer(kafka.ProducerConfig{
				Brokers: s.cfg.Kafka.Brokers,
				Topic:   s.cfg.Kafka.ResultTopic,
				Logger:  s.logger,
			})
			if err != nil {
				return err
			}
			defer producer.Close()

			s.logger.Info("export worker starting",
				slog.Any("brokers", s.cfg.Kafka.Brokers),
				slog.String("request_topic", s.cfg.Kafka.RequestTopic),
				slog.String("result_topic", s.cfg.Kafka.ResultTopic),
			)
			w := worker.New(s.orchestrator, producer, tracker, s.logger)
			return worker.Run(runCtx, s.cfg.Kafka, w, s.logger)
		},
	}
}
