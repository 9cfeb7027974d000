package services

import (
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colabora/internal/models/db_models"
	"colabora/pkg/logger"
)

func testSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:       "smtp.example.org",
		Port:       587,
		From:       "hola@example.org",
		FromName:   "Asociación Ejemplo",
		AppName:    "Asociación Ejemplo",
		AppBaseURL: "https://example.org/",
		Currency:   "eur",
	}
}

func TestNewSMTPMailServiceRequiresHostAndFrom(t *testing.T) {
	_, err := NewSMTPMailService(SMTPConfig{Host: "smtp.example.org"})
	assert.Error(t, err)

	_, err = NewSMTPMailService(testSMTPConfig())
	assert.NoError(t, err)
}

func TestBuildDonationEmailOneOff(t *testing.T) {
	data := buildDonationEmail(testSMTPConfig(), decimal.RequireFromString("25"), db_models.PeriodicityOneOff, nil)

	assert.Equal(t, "25.00 EUR", data.Amount)
	assert.Equal(t, "puntual", data.Periodicity)
	assert.Empty(t, data.Subscription)
	assert.Empty(t, data.ManageURL)
}

func TestBuildDonationEmailRecurring(t *testing.T) {
	sub := "sub_1"
	data := buildDonationEmail(testSMTPConfig(), decimal.RequireFromString("15.5"), db_models.PeriodicityQuarterly, &sub)

	assert.Equal(t, "15.50 EUR", data.Amount)
	assert.Equal(t, "trimestral", data.Periodicity)
	assert.Equal(t, "sub_1", data.Subscription)
	assert.Equal(t, "https://example.org/colabora", data.ManageURL)
}

func TestRenderEmail(t *testing.T) {
	svc, err := NewSMTPMailService(testSMTPConfig())
	require.NoError(t, err)
	smtpSvc := svc.(*smtpMailService)

	sub := "sub_1"
	html, text, err := smtpSvc.renderEmail(buildDonationEmail(smtpSvc.cfg, decimal.RequireFromString("15"), db_models.PeriodicityMonthly, &sub))
	require.NoError(t, err)

	assert.Contains(t, html, "15.00 EUR")
	assert.Contains(t, html, "mensual")
	assert.Contains(t, html, `href="https://example.org/colabora"`)
	assert.Contains(t, text, "Importe: 15.00 EUR")
	assert.Contains(t, text, "Suscripción: sub_1")
}

func TestFormatFromHeader(t *testing.T) {
	svc := &smtpMailService{cfg: SMTPConfig{From: "hola@example.org"}}
	assert.Equal(t, "hola@example.org", svc.formatFromHeader())

	svc.cfg.FromName = "Asociación"
	assert.Equal(t, "=?UTF-8?q?Asociaci=C3=B3n?= <hola@example.org>", svc.formatFromHeader())
}

func TestLogMailServiceNeverFails(t *testing.T) {
	svc := NewLogMailService(testSMTPConfig(), logger.NewNop())
	assert.NoError(t, svc.SendDonationConfirmation("a@x.com", decimal.RequireFromString("5"), db_models.PeriodicityOneOff, nil))
}

func TestSMTPSendTimesOutOnStalledServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// Accept and never send the greeting.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(5 * time.Second)
	}()

	cfg := testSMTPConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	cfg.Timeout = 200 * time.Millisecond
	svc, err := NewSMTPMailService(cfg)
	require.NoError(t, err)

	start := time.Now()
	err = svc.SendDonationConfirmation("a@x.com", decimal.RequireFromString("10"), db_models.PeriodicityOneOff, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}
