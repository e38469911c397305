package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/bloodlink-dev/bloodlink/internal/config"
	"github.com/sirupsen/logrus"
)

// Mailer sends one message to a recipient set. Implementations are
// synchronous; callers that must not fail on delivery go through the
// notify helpers, which swallow errors.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// SMTPMailer delivers over plain SMTP with optional auth.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (m SMTPMailer) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	return smtp.SendMail(addr, auth, m.From, to, []byte(msg))
}

// ConsoleMailer logs messages instead of delivering them; the dev
// default when no SMTP host is configured.
type ConsoleMailer struct{}

func (ConsoleMailer) Send(to []string, subject, body string) error {
	logrus.WithFields(logrus.Fields{
		"to":      strings.Join(to, ", "),
		"subject": subject,
	}).Info("mail (console backend): " + body)
	return nil
}

var mailer Mailer = ConsoleMailer{}

// InitMailer picks the backend: SMTP when a host is configured,
// console otherwise.
func InitMailer(cfg *config.Config) {
	if cfg.SMTPHost == "" {
		mailer = ConsoleMailer{}
		logrus.Info("mail: using console backend")
		return
	}

	mailer = SMTPMailer{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.FromEmail,
	}
	logrus.Infof("mail: using SMTP backend %s:%s", cfg.SMTPHost, cfg.SMTPPort)
}

// SetMailer swaps the backend; used by tests.
func SetMailer(m Mailer) {
	mailer = m
}
