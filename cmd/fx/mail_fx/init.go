package mail_fx

import (
	"go.uber.org/fx"

	"colabora/internal/config"
	"colabora/internal/services"
	"colabora/pkg/logger"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg config.Config, log *logger.Logger) (services.IMailService, error) {
	smtpCfg := services.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port, // 587 for STARTTLS; use 465 with UseSSL=true for SMTPS
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		From:       cfg.SMTP.From,
		FromName:   cfg.SMTP.FromName,
		UseSSL:     cfg.SMTP.UseSSL,
		RequireTLS: cfg.SMTP.RequireTLS,
		Timeout:    cfg.SMTP.Timeout,

		AppName:    cfg.SMTP.AppName,
		AppBaseURL: cfg.SMTP.AppBaseURL,
		Currency:   cfg.Stripe.Currency,
	}

	if smtpCfg.From == "" {
		log.Warn("SMTP_FROM not set, donation confirmations will only be logged")
		return services.NewLogMailService(smtpCfg, log), nil
	}
	return services.NewSMTPMailService(smtpCfg)
}
