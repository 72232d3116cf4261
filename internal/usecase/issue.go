package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/sbekbolat/maglink/internal/domain"
	"github.com/sbekbolat/maglink/internal/metrics"
	"github.com/sbekbolat/maglink/internal/repository"
	"github.com/sbekbolat/maglink/internal/token"
)

// Deliverer is the slice of the mail dispatcher the issuer needs.
type Deliverer interface {
	Deliver(ctx context.Context, acct *domain.Account, linkURL string) bool
}

// Validation classes returned by ValidateAddress.
const (
	ValidationEmpty   = "empty"
	ValidationInvalid = "invalid-format"
	ValidationOK      = "ok"
	ValidationUnknown = "unknown"
)

// Good enough for a UX hint; real validation is the delivery attempt.
var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IssueUsecase builds redeemable sign-in URLs and drives the public
// request-a-link flow.
type IssueUsecase struct {
	accounts          repository.AccountRepository
	audit             repository.AuditRepository
	codec             *token.Codec
	mail              Deliverer
	baseURL           string
	linkTTL           time.Duration
	neutralValidation bool
	logger            *slog.Logger
	now               func() time.Time
}

// IssueConfig carries the issuer's collaborators. Accounts, Audit and Mail
// may be nil for callers that only mint URLs (the operator CLI).
type IssueConfig struct {
	Accounts          repository.AccountRepository
	Audit             repository.AuditRepository
	Codec             *token.Codec
	Mail              Deliverer
	BaseURL           string
	LinkTTL           time.Duration
	NeutralValidation bool
}

func NewIssueUsecase(cfg IssueConfig, logger *slog.Logger) *IssueUsecase {
	return &IssueUsecase{
		accounts:          cfg.Accounts,
		audit:             cfg.Audit,
		codec:             cfg.Codec,
		mail:              cfg.Mail,
		baseURL:           cfg.BaseURL,
		linkTTL:           cfg.LinkTTL,
		neutralValidation: cfg.NeutralValidation,
		logger:            logger.With("component", "issuer"),
		now:               time.Now,
	}
}

// Issue builds a signed redemption URL for the user. The destination rides
// along unsigned; it is an opaque same-host path chosen by the caller and
// defaults to "/" at redemption time.
func (u *IssueUsecase) Issue(_ context.Context, userID int64, ttl time.Duration, destination string, class token.Class) (string, error) {
	if userID <= 0 {
		return "", domain.ErrInvalidUser
	}

	nonce, err := token.NewNonce()
	if err != nil {
		return "", err
	}
	wireNonce := token.JoinNonce(class, nonce)
	expiresAt := u.now().Add(ttl).Unix()

	sig, err := u.codec.Sign(userID, expiresAt, wireNonce)
	if err != nil {
		return "", fmt.Errorf("sign link token: %w", err)
	}

	q := url.Values{}
	q.Set("uid", strconv.FormatInt(userID, 10))
	q.Set("exp", strconv.FormatInt(expiresAt, 10))
	q.Set("nonce", wireNonce)
	q.Set("sig", sig)
	if destination != "" {
		q.Set("destination", destination)
	}

	metrics.LinksIssuedTotal.WithLabelValues(class.String()).Inc()
	return u.baseURL + "/auth/redeem?" + q.Encode(), nil
}

// RequestLink runs the public request-a-link path. Every failure is logged
// and swallowed here so the transport layer can answer with the neutral
// confirmation no matter what happened.
func (u *IssueUsecase) RequestLink(ctx context.Context, email string) {
	acct, err := u.accounts.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			u.logger.ErrorContext(ctx, "account lookup", "error", err)
		}
		return
	}
	if !acct.Active {
		return
	}

	link, err := u.Issue(ctx, acct.ID, u.linkTTL, "", token.SingleUse)
	if err != nil {
		u.logger.ErrorContext(ctx, "issue sign-in link", "error", err)
		return
	}

	u.record(ctx, repository.AuditLinkIssued, acct.ID, token.SingleUse.String())

	if !u.mail.Deliver(ctx, acct, link) {
		u.record(ctx, repository.AuditDeliveryFailed, acct.ID, "")
	} else {
		u.record(ctx, repository.AuditMailDelivered, acct.ID, "")
	}
}

// ValidateAddress classifies an address for client-side hinting. In
// neutral mode (the default) the answer never depends on whether the
// account exists; the lookup still runs so the two cases take comparable
// time.
func (u *IssueUsecase) ValidateAddress(ctx context.Context, email string) string {
	if email == "" {
		return ValidationEmpty
	}
	if !emailShape.MatchString(email) {
		return ValidationInvalid
	}

	acct, err := u.accounts.FindByEmail(ctx, email)
	if u.neutralValidation {
		return ValidationOK
	}
	if err != nil || !acct.Active {
		return ValidationUnknown
	}
	return ValidationOK
}

func (u *IssueUsecase) record(ctx context.Context, kind string, userID int64, detail string) {
	if u.audit == nil {
		return
	}
	ev := repository.AuditEvent{Kind: kind, UserID: userID, Detail: detail}
	if err := u.audit.Record(ctx, ev); err != nil {
		u.logger.WarnContext(ctx, "audit record", "kind", kind, "error", err)
	}
}
