// Command mail-worker delivers emails queued by the API over SMTP.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"finax/internal/config"
	"finax/internal/logger"
	"finax/internal/notify"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadWorker("configs")
	if err != nil {
		logger.New(logger.InfoLevel, "console").Fatalw("error reading config", "err", err)
	}

	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	sender, err := notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.Mail.SMTP.Host,
		Port:     cfg.Mail.SMTP.Port,
		Username: cfg.Mail.SMTP.Username,
		Password: cfg.Mail.SMTP.Password,
		From:     cfg.Mail.From,
		FromName: cfg.App.Name,
	})
	if err != nil {
		log.Fatalw("failed to init smtp sender", "err", err)
	}

	queue, err := notify.DialQueue(cfg.Mail.AMQP.URL, cfg.Mail.AMQP.Exchange, cfg.Mail.AMQP.Queue, log)
	if err != nil {
		log.Fatalw("failed to connect to mail queue", "err", err)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			log.Errorw("failed to close mail queue", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("mail worker consuming", "queue", cfg.Mail.AMQP.Queue)
		return queue.Consume(gctx, sender.Send)
	})
	// a dropped broker connection stops the consumer too
	g.Go(func() error {
		return queue.Closed(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("mail worker stopped", "err", err)
		return
	}
	log.Infow("mail worker stopped")
}
