package repository

import (
	"context"
	"time"
)

// Audit event kinds.
const (
	AuditLinkIssued     = "link_issued"
	AuditLinkRedeemed   = "link_redeemed"
	AuditLinkRejected   = "link_rejected"
	AuditMailDelivered  = "mail_delivered"
	AuditDeliveryFailed = "delivery_failed"
)

type AuditEvent struct {
	Kind   string
	UserID int64
	Detail string
}

// AuditRepository records login-flow events for operators. Recording is
// best effort: callers log failures and move on, the login flow never
// depends on the audit trail.
type AuditRepository interface {
	Record(ctx context.Context, ev AuditEvent) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
