package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"bikeshop/pkg/config"
)

// Mailer delivers a single notification. Implementations must respect the
// context deadline; a hung relay may not block beyond it.
type Mailer interface {
	Send(ctx context.Context, n Notification) error
}

type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, n Notification) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(n.To); err != nil {
		return err
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(mail.TypeTextPlain, n.Body)

	return m.client.DialAndSendWithContext(ctx, msg)
}

// LogMailer is used when no SMTP relay is configured: it logs the message
// instead of sending it.
type LogMailer struct {
	Log zerolog.Logger
}

func (m LogMailer) Send(_ context.Context, n Notification) error {
	m.Log.Info().
		Str("to", n.To).
		Str("subject", n.Subject).
		Msg("mail (not sent, smtp unconfigured)")
	return nil
}
