// Command server runs the recruiting intake and SMS relay.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intake-relay/internal/common/config"
	commonhttp "intake-relay/internal/common/http"
	"intake-relay/internal/common/logger"
	"intake-relay/internal/dispatch"
	"intake-relay/internal/httpapi"
	"intake-relay/internal/sheets"
	"intake-relay/internal/template"
	"intake-relay/internal/twilio"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewStructured("info", "json").WithError(err).Error("configuration load failed", nil)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	httpClient := commonhttp.NewClient(30 * time.Second)
	sheetsClient := sheets.NewClient(cfg.Sheets.WebAppURL, cfg.Sheets.AuthToken, httpClient, log)
	smsClient := twilio.NewClient(twilio.Config{
		AccountSID:          cfg.Twilio.AccountSID,
		AuthToken:           cfg.Twilio.AuthToken,
		MessagingServiceSID: cfg.Twilio.MessagingServiceSID,
		FromNumber:          cfg.Twilio.FromNumber,
		APIBase:             cfg.Twilio.APIBase,
	}, httpClient, log)

	dispatcher := dispatch.New(dispatch.Config{
		CalendarID:       cfg.Calendar.CalendarID,
		Timezone:         cfg.Calendar.Timezone,
		InterviewerEmail: cfg.Calendar.InterviewerEmail,
		Workers:          cfg.Dispatch.Workers,
		QueueSize:        cfg.Dispatch.QueueSize,
	}, sheetsClient, smsClient, nil, nil, log)
	dispatcher.Start()

	api := httpapi.NewServer(*cfg, sheetsClient, smsClient, template.DefaultStore(), dispatcher, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", map[string]interface{}{"addr": cfg.Server.Addr})
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err := <-errCh:
		log.WithError(err).Error("server stopped unexpectedly", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown incomplete", nil)
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("dispatch queue not fully drained", nil)
	}
	log.Info("server stopped", nil)
}
