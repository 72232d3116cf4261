package mail

import (
	"context"
	"log/slog"
	"time"

	"github.com/sbekbolat/maglink/internal/domain"
	"github.com/sbekbolat/maglink/internal/metrics"
)

const defaultSendTimeout = 5 * time.Second

// adminLookup is the subset of the account store the dispatcher needs for
// sender-identity resolution. Defined here (point of use) so tests can
// inject a fake.
type adminLookup interface {
	FindAdmin(ctx context.Context) (*domain.Account, error)
}

// Dispatcher renders the sign-in email and delivers it: primary transport
// first, one fallback attempt on failure, never more. Outcomes are logged
// and counted; they are not surfaced to the requester.
type Dispatcher struct {
	primary   Transport
	fallback  Transport
	tmpl      Template
	sender    SenderIdentity
	siteName  string
	siteEmail string
	admins    adminLookup
	logger    *slog.Logger
	timeout   time.Duration
}

type DispatcherConfig struct {
	Primary   Transport
	Fallback  Transport
	Template  Template // zero value means DefaultTemplate
	Sender    SenderIdentity
	SiteName  string
	SiteEmail string
	Admins    adminLookup
	Timeout   time.Duration
}

func NewDispatcher(cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	tmpl := cfg.Template
	if tmpl.Subject == "" {
		tmpl.Subject = DefaultTemplate.Subject
	}
	if tmpl.BodyHTML == "" {
		tmpl.BodyHTML = DefaultTemplate.BodyHTML
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &Dispatcher{
		primary:   cfg.Primary,
		fallback:  cfg.Fallback,
		tmpl:      tmpl,
		sender:    cfg.Sender,
		siteName:  cfg.SiteName,
		siteEmail: cfg.SiteEmail,
		admins:    cfg.Admins,
		logger:    logger.With("component", "mail"),
		timeout:   timeout,
	}
}

// Deliver sends the sign-in link to the account. It returns whether any
// transport accepted the message; callers must not let the answer change
// their own response to the requester.
func (d *Dispatcher) Deliver(ctx context.Context, acct *domain.Account, linkURL string) bool {
	msg := d.compose(ctx, acct, linkURL)

	err := d.send(ctx, d.primary, msg)
	if err == nil {
		metrics.MailDeliveriesTotal.WithLabelValues(d.primary.Name(), "ok").Inc()
		return true
	}
	metrics.MailDeliveriesTotal.WithLabelValues(d.primary.Name(), "error").Inc()
	d.logger.WarnContext(ctx, "primary mail transport failed",
		"transport", d.primary.Name(), "error", err)

	if d.fallback == nil {
		return false
	}

	if err := d.send(ctx, d.fallback, msg); err != nil {
		metrics.MailDeliveriesTotal.WithLabelValues(d.fallback.Name(), "error").Inc()
		d.logger.ErrorContext(ctx, "fallback mail transport failed",
			"transport", d.fallback.Name(), "error", err)
		return false
	}

	metrics.MailDeliveriesTotal.WithLabelValues(d.fallback.Name(), "ok").Inc()
	return true
}

func (d *Dispatcher) send(ctx context.Context, t Transport, msg Message) error {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return t.Send(sendCtx, msg)
}

func (d *Dispatcher) compose(ctx context.Context, acct *domain.Account, linkURL string) Message {
	data := RenderData{
		UserName: acct.Name,
		SiteName: d.siteName,
		LinkURL:  linkURL,
	}
	if data.UserName == "" {
		data.UserName = acct.Email
	}

	htmlBody := Render(d.tmpl.BodyHTML, data)
	sender := ResolveSender(d.sender, d.siteName, d.siteEmail, d.adminEmail(ctx))

	return Message{
		To:        acct.Email,
		FromName:  sender.Name,
		FromEmail: sender.Email,
		Subject:   Render(d.tmpl.Subject, data),
		HTML:      htmlBody,
		Text:      HTMLToPlainText(htmlBody),
	}
}

func (d *Dispatcher) adminEmail(ctx context.Context) string {
	if d.admins == nil {
		return ""
	}
	admin, err := d.admins.FindAdmin(ctx)
	if err != nil {
		return ""
	}
	return admin.Email
}
