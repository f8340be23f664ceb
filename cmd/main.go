package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finax/internal/config"
	"finax/internal/handlers"
	"finax/internal/logger"
	"finax/internal/notify"
	"finax/internal/repository"
	"finax/internal/repository/db"
	"finax/internal/server"
	"finax/internal/service"
)

// @title                       Finax API
// @version                     1.0
// @description                 Personal finance tracking: accounts, categories and transactions.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load configs/config.yml, .env and environment
	cfg, err := config.Load("configs")
	if err != nil {
		logger.New(logger.InfoLevel, "console").Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// open DB and apply migrations
	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init database", "driver", cfg.DB.Driver, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	// outgoing mail
	sender, closeSender, err := newMailSender(cfg, log)
	if err != nil {
		log.Fatalw("failed to init mail transport", "transport", cfg.Mail.Transport, "err", err)
	}
	defer closeSender()

	mailer := notify.NewNotifier(sender, notify.Options{
		AppName:     cfg.App.Name,
		FrontendURL: cfg.App.FrontendURL,
		ResetTTL:    cfg.Auth.ResetTTL,
	})

	// wire dependencies
	repos := repository.NewRepository(conn, cfg.DB.Driver)
	services := service.NewService(repos, mailer, service.Options{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenTTL:      cfg.Auth.TokenTTL,
		ResetTTL:      cfg.Auth.ResetTTL,
		UploadDir:     cfg.Upload.Dir,
		MaxUploadSize: cfg.Upload.MaxSize,
	}, log)
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		AppName:        cfg.App.Name,
		UploadDir:      cfg.Upload.Dir,
		MaxUploadSize:  cfg.Upload.MaxSize,
		PublicURL:      cfg.Upload.PublicURL,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, services, cfg.ShutdownTimeout, log)
}

// openDB initializes the configured database.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	conn, err := db.InitDB(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	log.Infow("database ready", "driver", cfg.DB.Driver)
	return conn, nil
}

// newMailSender picks the transport for outgoing mail. The returned func
// releases it.
func newMailSender(cfg *config.Config, log *logger.Logger) (notify.Sender, func(), error) {
	switch cfg.Mail.Transport {
	case config.TransportSMTP:
		s, err := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.Mail.SMTP.Host,
			Port:     cfg.Mail.SMTP.Port,
			Username: cfg.Mail.SMTP.Username,
			Password: cfg.Mail.SMTP.Password,
			From:     cfg.Mail.From,
			FromName: cfg.App.Name,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case config.TransportAMQP:
		q, err := notify.DialQueue(cfg.Mail.AMQP.URL, cfg.Mail.AMQP.Exchange, cfg.Mail.AMQP.Queue, log)
		if err != nil {
			return nil, nil, err
		}
		return q, func() {
			if err := q.Close(); err != nil {
				log.Errorw("failed to close mail queue", "err", err)
			}
		}, nil

	case config.TransportLog:
		log.Infow("mail transport is log; emails are not delivered")
		return notify.NewLogSender(log), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT/SIGTERM, then drains HTTP requests and
// pending background emails within timeout.
func waitForShutdown(srv *server.Server, services *service.Service, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	if err := services.Wait(ctx); err != nil {
		log.Errorw("pending emails not sent before shutdown", "err", err)
	}
}
