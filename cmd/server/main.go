// Command server is the entry point for the inkwell API server.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nhollis/inkwell/internal/config"
	"github.com/nhollis/inkwell/internal/mail"
	"github.com/nhollis/inkwell/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer, err = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, logger)
		if err != nil {
			logger.Error("invalid mail configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("SMTP_HOST not set, outbound mail will be logged instead of delivered")
		mailer = mail.NewLogMailer(logger)
	}

	srv, err := server.New(cfg, logger, mailer)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
