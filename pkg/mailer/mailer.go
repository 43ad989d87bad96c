// Package mailer sends transactional mail without blocking request handlers.
package mailer

import (
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/gocart-dev/gocart/config"
)

type Mailer struct {
	cfg  config.SmtpConfig
	pool *ants.Pool
}

func NewMailer(cfg config.SmtpConfig) (*Mailer, error) {
	pool, err := ants.NewPool(8, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &Mailer{cfg: cfg, pool: pool}, nil
}

// Send queues a plain-text message for delivery on the worker pool.
// Delivery failures are logged; callers never wait on SMTP.
func (m *Mailer) Send(to, subject, body string) error {
	return m.pool.Submit(func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.cfg.From)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/plain", body)

		d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
		if err := d.DialAndSend(msg); err != nil {
			zap.L().Error("mail delivery failed", zap.String("to", to), zap.Error(err))
			return
		}
		zap.L().Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	})
}

func (m *Mailer) Release() {
	m.pool.Release()
}
