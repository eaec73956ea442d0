package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/bunnystock/leaddesk/internal/entity"
	"github.com/bunnystock/leaddesk/internal/usecase"
)

const (
	implicitTLSPort = 465

	customerAckSubject = "[Bunny Stock] 상담신청이 접수되었습니다"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// messageSender is satisfied by *gomail.Dialer.
type messageSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// NewEmailSender builds the single SMTP transport for the process. Port 465
// uses implicit TLS; any other port upgrades with STARTTLS.
func NewEmailSender(host string, port int, user, password, from string, internalTo []string) *EmailSender {
	d := gomail.NewDialer(host, port, user, password)
	d.SSL = port == implicitTLSPort
	d.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}

	return &EmailSender{
		Host:       host,
		Port:       port,
		User:       user,
		Password:   password,
		From:       from,
		InternalTo: internalTo,
		dialer:     d,
		tmpl:       templates,
	}
}

var _ usecase.Notifier = (*EmailSender)(nil)

// NotifyInternal mails the operations team; replies go to the customer.
func (s *EmailSender) NotifyInternal(ctx context.Context, n usecase.LeadNotice) error {
	if len(s.InternalTo) == 0 {
		return errors.New("no internal recipient configured")
	}

	body, err := s.render("internal_alert.html", InternalAlertData{
		Name:        n.Name,
		Phone:       n.Phone,
		Email:       n.Email,
		LeadID:      n.LeadID,
		MessageHTML: nl2br(n.Message),
	})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.InternalTo...)
	m.SetHeader("Reply-To", n.Email)
	m.SetHeader("Subject", "📩 신규 상담 접수: "+n.Name)
	m.SetBody("text/html", body)

	return s.send(ctx, m)
}

// NotifyCustomer sends the acknowledgment greeting the customer by masked name.
func (s *EmailSender) NotifyCustomer(ctx context.Context, n usecase.LeadNotice) error {
	body, err := s.render("customer_ack.html", CustomerAckData{MaskedName: entity.MaskName(n.Name)})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", n.Email)
	m.SetHeader("Subject", customerAckSubject)
	m.SetBody("text/html", body)

	return s.send(ctx, m)
}

func (s *EmailSender) render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return body.String(), nil
}

func (s *EmailSender) send(ctx context.Context, m *gomail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br/>"))
}
