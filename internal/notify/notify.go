// 包 notify：线索邮件通知，SendGrid v3 mail/send 接口
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrNotConfigured = errors.New("notify: not configured")

// DefaultHost：SendGrid API 地址
const DefaultHost = "https://api.sendgrid.com"

const mailSendPath = "/v3/mail/send"

// Message：一封 HTML 邮件
type Message struct {
	Subject string
	HTML    string
}

// Notifier：发送通知；Configured 为 false 时调用方不应调用 Send
type Notifier interface {
	Configured() bool
	Send(ctx context.Context, m Message) error
}

// SendGrid：v3 API 客户端，不重试
type SendGrid struct {
	Host    string
	Key     string
	From    string
	To      string
	Timeout time.Duration
}

func NewSendGrid(host, key, from, to string) *SendGrid {
	if host == "" {
		host = DefaultHost
	}
	return &SendGrid{Host: host, Key: key, From: from, To: to, Timeout: 10 * time.Second}
}

// Configured：密钥、发件人、收件人齐全
func (s *SendGrid) Configured() bool {
	return s != nil && s.Key != "" && s.From != "" && s.To != ""
}

// StatusError：SendGrid 返回非 2xx
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string { return fmt.Sprintf("sendgrid status %d: %s", e.Code, e.Body) }

func (s *SendGrid) Send(ctx context.Context, m Message) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	msg := mail.NewV3MailInit(
		mail.NewEmail("", s.From),
		m.Subject,
		mail.NewEmail("", s.To),
		mail.NewContent("text/html", m.HTML),
	)
	req := sendgrid.GetRequest(s.Key, mailSendPath, s.Host)
	req.Method = http.MethodPost
	req.Body = mail.GetRequestBody(msg)
	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		body := resp.Body
		if len(body) > 2048 {
			body = body[:2048]
		}
		return &StatusError{Code: resp.StatusCode, Body: body}
	}
	return nil
}
