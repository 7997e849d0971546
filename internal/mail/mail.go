// Package mail is the outbound email boundary. The server only ever
// sends verification messages; everything else about delivery is the
// SMTP relay's problem.
package mail

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

type Sender interface {
	Send(to, subject, body string) error
}

type SMTP struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTP returns nil when no host is configured; callers treat a nil
// Sender as "log instead of send".
func NewSMTP(host string, port int, from, user, pass string) *SMTP {
	if host == "" {
		return nil
	}
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTP{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

func (s *SMTP) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	log.Info().Str("module", "mail").Str("to", to).Msg("mail sent")
	return nil
}
