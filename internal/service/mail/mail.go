package mail

import (
	"context"
	"crypto/tls"
	"fmt"

	"feastiq/internal/config"
	"feastiq/internal/model"

	gomail "gopkg.in/mail.v2"
)

const Subject = "Reservation Confirmation"

// Sender - транспорт до почтового релея (*gomail.Dialer).
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer отправляет подтверждение брони гостю и копию оператору.
type Mailer struct {
	sender     Sender
	from       string
	operator   string
	restaurant string
}

func NewMailer(cfg config.MailConfig) *Mailer {
	d := gomail.NewDialer(cfg.Server, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = cfg.Timeout
	d.TLSConfig = &tls.Config{ServerName: cfg.Server, MinVersion: tls.VersionTLS12}
	switch {
	case cfg.Port == 465:
		d.SSL = true
	case cfg.UseTLS:
		d.StartTLSPolicy = gomail.MandatoryStartTLS
	default:
		d.StartTLSPolicy = gomail.OpportunisticStartTLS
	}

	return NewMailerWithSender(d, cfg.Username, cfg.OperatorAddress(), cfg.Restaurant)
}

func NewMailerWithSender(sender Sender, from, operator, restaurant string) *Mailer {
	return &Mailer{
		sender:     sender,
		from:       from,
		operator:   operator,
		restaurant: restaurant,
	}
}

func (m *Mailer) Channel() string {
	return model.ChannelEmail
}

// Notify блокируется на время SMTP-сессии. Повторы выполняет outbox.
func (m *Mailer) Notify(ctx context.Context, r model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.sender.DialAndSend(m.Compose(r)); err != nil {
		return fmt.Errorf("send confirmation for reservation %d: %w", r.ID, err)
	}
	return nil
}

// Compose собирает письмо: получатели - гость и оператор.
func (m *Mailer) Compose(r model.Reservation) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.recipients(r)...)
	msg.SetHeader("Subject", Subject)
	msg.SetBody("text/plain", ConfirmationBody(r, m.restaurant))
	return msg
}

func (m *Mailer) recipients(r model.Reservation) []string {
	recipients := make([]string, 0, 2)
	if r.Email != "" {
		recipients = append(recipients, r.Email)
	}
	if m.operator != "" && m.operator != r.Email {
		recipients = append(recipients, m.operator)
	}
	return recipients
}

func ConfirmationBody(r model.Reservation, restaurant string) string {
	return fmt.Sprintf(`
Hello %s,

✅ Your reservation for %s guest(s) is confirmed on:
📅 Date: %s
⏰ Time: %s

📞 Contact: %s
📝 Message: %s

Thanks for choosing %s!
`, r.Name, r.Guests, r.Date, r.Time, r.Phone, r.Message, restaurant)
}
