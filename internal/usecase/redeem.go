package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sbekbolat/maglink/internal/domain"
	"github.com/sbekbolat/maglink/internal/metrics"
	"github.com/sbekbolat/maglink/internal/replay"
	"github.com/sbekbolat/maglink/internal/repository"
	"github.com/sbekbolat/maglink/internal/session"
	"github.com/sbekbolat/maglink/internal/token"
)

// RedeemParams are the query parameters of an incoming redemption URL,
// already parsed into their native types.
type RedeemParams struct {
	UserID      int64
	ExpiresAt   int64
	Nonce       string
	Signature   string
	Destination string
}

// RedeemResult is returned on the one successful path.
type RedeemResult struct {
	Account      *domain.Account
	SessionToken string
	Redirect     string
}

// RedeemUsecase validates an incoming link and, on success, finalizes a
// session. Failures split into exactly two caller-visible buckets:
// domain.ErrLinkInvalid merges expired, forged and already-used links so a
// probing attacker learns nothing from the distinction, while
// domain.ErrAccountInvalid may be reported separately because the token
// itself was already proven valid.
type RedeemUsecase struct {
	accounts repository.AccountRepository
	audit    repository.AuditRepository
	codec    *token.Codec
	guard    replay.Guard
	sessions session.Finalizer
	logger   *slog.Logger
	now      func() time.Time
}

type RedeemConfig struct {
	Accounts repository.AccountRepository
	Audit    repository.AuditRepository
	Codec    *token.Codec
	Guard    replay.Guard
	Sessions session.Finalizer
}

func NewRedeemUsecase(cfg RedeemConfig, logger *slog.Logger) *RedeemUsecase {
	return &RedeemUsecase{
		accounts: cfg.Accounts,
		audit:    cfg.Audit,
		codec:    cfg.Codec,
		guard:    cfg.Guard,
		sessions: cfg.Sessions,
		logger:   logger.With("component", "redeemer"),
		now:      time.Now,
	}
}

func (u *RedeemUsecase) Redeem(ctx context.Context, p RedeemParams) (*RedeemResult, error) {
	now := u.now()

	if p.UserID <= 0 || !u.codec.Verify(p.UserID, p.ExpiresAt, p.Nonce, p.Signature, now) {
		metrics.RedemptionsTotal.WithLabelValues("invalid_link").Inc()
		return nil, domain.ErrLinkInvalid
	}

	class, _ := token.SplitNonce(p.Nonce)

	if class == token.SingleUse {
		ttl := time.Duration(p.ExpiresAt-now.Unix()) * time.Second
		fresh, err := u.guard.ConsumeOnce(ctx, p.Signature, ttl)
		switch {
		case err != nil:
			// Store outage: accept on signature and expiry alone rather
			// than locking every user out.
			metrics.ReplayStoreErrorsTotal.Inc()
			u.logger.WarnContext(ctx, "replay store unavailable, skipping one-time check", "error", err)
		case !fresh:
			metrics.RedemptionsTotal.WithLabelValues("invalid_link").Inc()
			u.record(ctx, repository.AuditLinkRejected, p.UserID, "replayed")
			return nil, domain.ErrLinkInvalid
		}
	}

	acct, err := u.accounts.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			metrics.RedemptionsTotal.WithLabelValues("invalid_account").Inc()
			u.record(ctx, repository.AuditLinkRejected, p.UserID, "missing account")
			return nil, domain.ErrAccountInvalid
		}
		metrics.RedemptionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !acct.Active {
		metrics.RedemptionsTotal.WithLabelValues("invalid_account").Inc()
		u.record(ctx, repository.AuditLinkRejected, p.UserID, "inactive account")
		return nil, domain.ErrAccountInvalid
	}

	sessionToken, err := u.sessions.Finalize(ctx, acct)
	if err != nil {
		metrics.RedemptionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("finalize session: %w", err)
	}

	dest := p.Destination
	if dest == "" {
		dest = "/"
	}

	metrics.RedemptionsTotal.WithLabelValues("success").Inc()
	u.record(ctx, repository.AuditLinkRedeemed, acct.ID, class.String())

	return &RedeemResult{
		Account:      acct,
		SessionToken: sessionToken,
		Redirect:     dest,
	}, nil
}

func (u *RedeemUsecase) record(ctx context.Context, kind string, userID int64, detail string) {
	if u.audit == nil {
		return
	}
	ev := repository.AuditEvent{Kind: kind, UserID: userID, Detail: detail}
	if err := u.audit.Record(ctx, ev); err != nil {
		u.logger.WarnContext(ctx, "audit record", "kind", kind, "error", err)
	}
}
