package email

import (
	"context"
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// GomailSender envia correos via SMTP usando gomail.
type GomailSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewGomailSender(host string, port int, username, password, from, fromName string) (*GomailSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &GomailSender{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}, nil
}

func (s *GomailSender) SendLoginOTP(_ context.Context, toEmail string, code string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	m := gomail.NewMessage()
	if strings.TrimSpace(s.fromName) != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Wagy Login OTP")
	m.SetBody("text/plain", fmt.Sprintf("Your OTP code is: %s\nIt expires in 5 minutes.\n", code))

	return s.dialer.DialAndSend(m)
}
