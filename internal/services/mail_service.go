package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"colabora/internal/models/db_models"
	"colabora/pkg/logger"
)

type IMailService interface {
	SendDonationConfirmation(to string, amount decimal.Decimal, periodicity db_models.Periodicity, subscriptionRef *string) error
}

// SMTPConfig holds SMTP + branding config.
type SMTPConfig struct {
	Host       string
	Port       int // 587 for STARTTLS, 465 with UseSSL
	Username   string
	Password   string
	From       string
	FromName   string
	UseSSL     bool
	RequireTLS bool          // fail if STARTTLS is not offered
	Timeout    time.Duration // whole SMTP session, dial included; 0 means 30s

	AppName    string
	AppBaseURL string
	Currency   string
}

const defaultSMTPTimeout = 30 * time.Second

type smtpMailService struct {
	cfg     SMTPConfig
	htmlTpl *template.Template
	textTpl *template.Template
}

func NewSMTPMailService(cfg SMTPConfig) (IMailService, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and from address are required")
	}
	htmlTpl, err := template.New("donationHTML").Parse(donationHTMLTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	textTpl, err := template.New("donationText").Parse(donationTextTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}

	return &smtpMailService{cfg: cfg, htmlTpl: htmlTpl, textTpl: textTpl}, nil
}

// ------------------- Public API -------------------

func (s *smtpMailService) SendDonationConfirmation(to string, amount decimal.Decimal, periodicity db_models.Periodicity, subscriptionRef *string) error {
	data := buildDonationEmail(s.cfg, amount, periodicity, subscriptionRef)

	html, text, err := s.renderEmail(data)
	if err != nil {
		return err
	}
	return s.send(to, data.Title, html, text)
}

// ------------------- Rendering -------------------

type DonationEmailData struct {
	Title        string
	Intro        string
	Amount       string
	Periodicity  string
	Subscription string
	ManageURL    string
	AppName      string
	Year         int
}

var periodicityLabels = map[db_models.Periodicity]string{
	db_models.PeriodicityOneOff:     "puntual",
	db_models.PeriodicityMonthly:    "mensual",
	db_models.PeriodicityQuarterly:  "trimestral",
	db_models.PeriodicitySemiannual: "semestral",
	db_models.PeriodicityAnnual:     "anual",
}

func buildDonationEmail(cfg SMTPConfig, amount decimal.Decimal, periodicity db_models.Periodicity, subscriptionRef *string) DonationEmailData {
	label, ok := periodicityLabels[periodicity]
	if !ok {
		label = string(periodicity)
	}
	data := DonationEmailData{
		Title:       "Gracias por tu donación",
		Intro:       "Hemos recibido tu donación. Tu apoyo hace posible nuestro trabajo diario.",
		Amount:      fmt.Sprintf("%s %s", amount.StringFixed(2), strings.ToUpper(cfg.Currency)),
		Periodicity: label,
		AppName:     cfg.AppName,
		Year:        time.Now().Year(),
	}
	if subscriptionRef != nil && *subscriptionRef != "" {
		data.Intro = "Tu donación periódica está activa. Recibirás un cargo con la periodicidad indicada hasta que la canceles."
		data.Subscription = *subscriptionRef
		data.ManageURL = strings.TrimRight(cfg.AppBaseURL, "/") + "/colabora"
	}
	return data
}

const donationHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background: #f4f6f8; color: #1f2937; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    .wrapper { width: 100%; padding: 32px 16px; box-sizing: border-box; }
    .container { max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 12px; overflow: hidden; }
    .header { padding: 24px 32px; background: #0f766e; color: #ffffff; font-weight: 700; font-size: 20px; }
    .hero { padding: 32px; }
    h1 { margin: 0 0 16px; font-size: 24px; }
    p { margin: 0 0 16px; line-height: 1.6; }
    table.summary { width: 100%; border-collapse: collapse; margin: 16px 0 24px; }
    table.summary td { padding: 8px 0; border-bottom: 1px solid #e5e7eb; }
    .btn { display: inline-block; padding: 12px 24px; background: #0f766e; color: #ffffff !important; text-decoration: none; border-radius: 8px; font-weight: 600; }
    .footer { padding: 16px 32px; color: #6b7280; font-size: 12px; }
  </style>
</head>
<body>
  <div class="wrapper">
    <div class="container">
      <div class="header">{{.AppName}}</div>
      <div class="hero">
        <h1>{{.Title}}</h1>
        <p>{{.Intro}}</p>
        <table class="summary">
          <tr><td>Importe</td><td>{{.Amount}}</td></tr>
          <tr><td>Periodicidad</td><td>{{.Periodicity}}</td></tr>
          {{if .Subscription}}<tr><td>Suscripción</td><td>{{.Subscription}}</td></tr>{{end}}
        </table>
        {{if .ManageURL}}<a class="btn" href="{{.ManageURL}}">Gestionar mi colaboración</a>{{end}}
      </div>
      <div class="footer">© {{.Year}} {{.AppName}}</div>
    </div>
  </div>
</body>
</html>`

const donationTextTemplate = `{{.Title}}

{{.Intro}}

Importe: {{.Amount}}
Periodicidad: {{.Periodicity}}
{{if .Subscription}}Suscripción: {{.Subscription}}
{{end}}{{if .ManageURL}}Gestionar mi colaboración: {{.ManageURL}}
{{end}}
-- {{.AppName}} (c) {{.Year}}
`

func (s *smtpMailService) renderEmail(data DonationEmailData) (html string, text string, err error) {
	var hb, tb bytes.Buffer

	if err = s.htmlTpl.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err = s.textTpl.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

// ------------------- SMTP Send -------------------

func (s *smtpMailService) send(to, subject, htmlBody, textBody string) error {
	boundary := fmt.Sprintf("mixed_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = msg.WriteString(fmt.Sprintf(format, a...)) }

	write("From: %s\r\n", s.formatFromHeader())
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	write("\r\n")

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	deadline := time.Now().Add(timeout)
	dialer := &net.Dialer{Deadline: deadline}

	var conn net.Conn
	var err error
	if s.cfg.UseSSL {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsCfg)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()
	// A server that accepts and then stalls must not pin a notifier worker.
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		} else if s.cfg.RequireTLS {
			return fmt.Errorf("server does not support STARTTLS and RequireTLS=true")
		}
	}

	if s.cfg.Username != "" {
		if err = c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return err
		}
	}
	if err = c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg.Bytes()); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", name), s.cfg.From)
}

// logMailService stands in when SMTP is not configured (local development).
type logMailService struct {
	cfg    SMTPConfig
	logger *logger.Logger
}

func NewLogMailService(cfg SMTPConfig, log *logger.Logger) IMailService {
	return &logMailService{cfg: cfg, logger: log}
}

func (l *logMailService) SendDonationConfirmation(to string, amount decimal.Decimal, periodicity db_models.Periodicity, subscriptionRef *string) error {
	data := buildDonationEmail(l.cfg, amount, periodicity, subscriptionRef)
	l.logger.Info("donation confirmation (smtp disabled)",
		"to", to,
		"amount", data.Amount,
		"periodicity", data.Periodicity,
		"subscription", data.Subscription)
	return nil
}
