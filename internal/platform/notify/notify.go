package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Message is one outbound notification.
type Message struct {
	Kind      string
	TenantID  string
	Recipient string
	Subject   string
	Body      string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP delivers plain-text email over a single connection per message.
type SMTP struct {
	cfg     SMTPConfig
	timeout time.Duration
	logger  *slog.Logger
}

func NewSMTP(cfg SMTPConfig, logger *slog.Logger) *SMTP {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTP{cfg: cfg, timeout: 10 * time.Second, logger: logger}
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if _, err := mail.ParseAddress(msg.Recipient); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.timeout))
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Debug("smtp client close failed",
				"event", "notify_smtp_close_failed",
				"module", "internal/platform/notify",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}()

	if s.cfg.Username != "" && s.cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.Recipient); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(s.cfg.From, msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp commit: %w", err)
	}
	return client.Quit()
}

func buildMessage(from string, msg Message) []byte {
	var buf bytes.Buffer
	headers := [][2]string{
		{"From", from},
		{"To", msg.Recipient},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h[0], h[1])
	}
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\n", "\r\n"))
	return buf.Bytes()
}

// Log records notifications instead of delivering them.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Send(_ context.Context, msg Message) error {
	l.logger.Info("notification recorded",
		"event", "notify_logged",
		"module", "internal/platform/notify",
		"layer", "platform",
		"kind", msg.Kind,
		"tenant_id", msg.TenantID,
		"recipient", msg.Recipient,
		"subject", msg.Subject,
	)
	return nil
}

// Observer is told about every send outcome.
type Observer interface {
	NotificationSent(kind string, err error)
}

// Observed reports outcomes of the wrapped sender.
type Observed struct {
	Next     Sender
	Observer Observer
}

func (o Observed) Send(ctx context.Context, msg Message) error {
	err := o.Next.Send(ctx, msg)
	if o.Observer != nil {
		o.Observer.NotificationSent(msg.Kind, err)
	}
	return err
}
