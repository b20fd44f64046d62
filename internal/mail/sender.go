package mail

import (
	"io"

	"gopkg.in/gomail.v2"

	"github.com/AHLJvanderPlas/Podfy-app/internal/config"
	pkgerrors "github.com/AHLJvanderPlas/Podfy-app/pkg/errors"
)

// Message is one outbound mail. Attachment is optional.
type Message struct {
	From       string
	To         []string
	Subject    string
	HTMLBody   string
	Attachment *Attachment
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Sender delivers one message. Delivery failure is reported as (false, nil);
// an error is returned only for malformed input.
type Sender interface {
	Send(msg Message) (bool, error)
}

type SMTPSender struct {
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password),
	}
}

func (s *SMTPSender) Send(msg Message) (bool, error) {
	if msg.From == "" || len(msg.To) == 0 {
		return false, pkgerrors.ErrMailMalformed
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	if att := msg.Attachment; att != nil {
		m.Attach(att.Filename,
			gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(att.Data)
				return err
			}))
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return false, nil
	}
	return true, nil
}
