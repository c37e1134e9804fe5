package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/blackrosevn/Dev02-Reporting/config"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridSender sends through the SendGrid v3 API.
type SendgridSender struct {
	key    string
	from   *sgmail.Email
	prefix string

	do func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

// NewSendgridSender builds a sender for cfg.
func NewSendgridSender(cfg *config.MailConfig) *SendgridSender {
	return &SendgridSender{
		key:    cfg.SendgridAPIKey,
		from:   sgmail.NewEmail(cfg.FromName, cfg.From),
		prefix: cfg.SubjectPrefix,
		do:     sendgrid.MakeRequestWithContext,
	}
}

// Send implements Sender.
func (s *SendgridSender) Send(ctx context.Context, to, subject, body string) error {
	p := sgmail.NewPersonalization()
	p.Subject = prefixed(s.prefix, subject)
	p.AddTos(sgmail.NewEmail("", to))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := s.do(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", to, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send to %s: status %d: %s", to, res.StatusCode, res.Body)
	}
	return nil
}
