package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sbekbolat/maglink/internal/domain"
	"github.com/sbekbolat/maglink/internal/token"
	"github.com/sbekbolat/maglink/internal/usecase"
)

// ---- fakes ----

// memGuard is an in-memory stand-in for the redis guard.
type memGuard struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (g *memGuard) ConsumeOnce(_ context.Context, sig string, _ time.Duration) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[sig] {
		return false, nil
	}
	g.seen[sig] = true
	return true, nil
}

type fakeFinalizer struct {
	finalize func(ctx context.Context, acct *domain.Account) (string, error)
}

func (f *fakeFinalizer) Finalize(ctx context.Context, acct *domain.Account) (string, error) {
	return f.finalize(ctx, acct)
}

// ---- helpers ----

func accountRepoWith(accounts ...*domain.Account) *fakeAccountRepo {
	return &fakeAccountRepo{
		findByID: func(_ context.Context, id int64) (*domain.Account, error) {
			for _, a := range accounts {
				if a.ID == id {
					return a, nil
				}
			}
			return nil, domain.ErrAccountNotFound
		},
	}
}

func staticFinalizer(tok string) *fakeFinalizer {
	return &fakeFinalizer{finalize: func(_ context.Context, _ *domain.Account) (string, error) {
		return tok, nil
	}}
}

func newRedeemer(repo *fakeAccountRepo, guard *memGuard) *usecase.RedeemUsecase {
	return usecase.NewRedeemUsecase(usecase.RedeemConfig{
		Accounts: repo,
		Codec:    token.NewCodec([]byte(testSecret)),
		Guard:    guard,
		Sessions: staticFinalizer("session-token"),
	}, slog.Default())
}

// issueParams mints a link through the real issuer and parses it back into
// redemption parameters, the same round trip a browser performs.
func issueParams(t *testing.T, userID int64, ttl time.Duration, destination string, class token.Class) usecase.RedeemParams {
	t.Helper()

	link, err := newIssuer(nil, nil, true).Issue(context.Background(), userID, ttl, destination, class)
	if err != nil {
		t.Fatalf("issue link: %v", err)
	}

	q := mustParseQuery(t, link)
	uid, err := strconv.ParseInt(q.Get("uid"), 10, 64)
	if err != nil {
		t.Fatalf("uid %q: %v", q.Get("uid"), err)
	}
	exp, err := strconv.ParseInt(q.Get("exp"), 10, 64)
	if err != nil {
		t.Fatalf("exp %q: %v", q.Get("exp"), err)
	}

	return usecase.RedeemParams{
		UserID:      uid,
		ExpiresAt:   exp,
		Nonce:       q.Get("nonce"),
		Signature:   q.Get("sig"),
		Destination: q.Get("destination"),
	}
}

// ---- Redeem ----

func TestRedeem_SingleUse_SucceedsOnceThenRejects(t *testing.T) {
	repo := accountRepoWith(activeAccount)
	guard := &memGuard{}
	u := newRedeemer(repo, guard)

	p := issueParams(t, activeAccount.ID, time.Hour, "/dashboard", token.SingleUse)

	res, err := u.Redeem(context.Background(), p)
	if err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	if res.Redirect != "/dashboard" {
		t.Errorf("redirect = %q, want /dashboard", res.Redirect)
	}
	if res.SessionToken != "session-token" {
		t.Errorf("session token = %q, want the finalizer's token", res.SessionToken)
	}

	// Identical URL again: the generic invalid-link bucket, nothing more
	// specific.
	if _, err := u.Redeem(context.Background(), p); !errors.Is(err, domain.ErrLinkInvalid) {
		t.Errorf("second redemption error = %v, want ErrLinkInvalid", err)
	}
}

func TestRedeem_Persistent_RedeemsRepeatedly(t *testing.T) {
	persistent := &domain.Account{ID: 7, Email: "ops@example.com", Active: true}
	u := newRedeemer(accountRepoWith(persistent), &memGuard{})

	p := issueParams(t, persistent.ID, 48*time.Hour, "", token.Persistent)

	for i := 0; i < 3; i++ {
		if _, err := u.Redeem(context.Background(), p); err != nil {
			t.Fatalf("redemption %d failed: %v", i+1, err)
		}
	}
}

func TestRedeem_Persistent_StillExpires(t *testing.T) {
	persistent := &domain.Account{ID: 7, Email: "ops@example.com", Active: true}
	u := newRedeemer(accountRepoWith(persistent), &memGuard{})

	// Mint a persistent token whose genuine expiry is already past.
	wire := token.JoinNonce(token.Persistent, "abcdef0123456789")
	exp := time.Now().Add(-time.Hour).Unix()
	sig, err := token.NewCodec([]byte(testSecret)).Sign(persistent.ID, exp, wire)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	p := usecase.RedeemParams{UserID: persistent.ID, ExpiresAt: exp, Nonce: wire, Signature: sig}
	if _, err := u.Redeem(context.Background(), p); !errors.Is(err, domain.ErrLinkInvalid) {
		t.Errorf("error = %v, want ErrLinkInvalid", err)
	}
}

func TestRedeem_ExpiredLinkRejected(t *testing.T) {
	u := usecase.NewRedeemUsecase(usecase.RedeemConfig{
		Accounts: accountRepoWith(activeAccount),
		Codec:    token.NewCodec([]byte(testSecret)),
		Guard:    &memGuard{},
		Sessions: staticFinalizer("session-token"),
	}, slog.Default())

	// Sign a token whose genuine expiry is in the past.
	codec := token.NewCodec([]byte(testSecret))
	exp := time.Now().Add(-time.Hour).Unix()
	sig, err := codec.Sign(activeAccount.ID, exp, "somenonce")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	p := usecase.RedeemParams{UserID: activeAccount.ID, ExpiresAt: exp, Nonce: "somenonce", Signature: sig}
	if _, err := u.Redeem(context.Background(), p); !errors.Is(err, domain.ErrLinkInvalid) {
		t.Errorf("error = %v, want ErrLinkInvalid", err)
	}
}

func TestRedeem_TamperedParamsRejected(t *testing.T) {
	u := newRedeemer(accountRepoWith(activeAccount), &memGuard{})
	base := issueParams(t, activeAccount.ID, time.Hour, "", token.SingleUse)

	mutations := map[string]func(p usecase.RedeemParams) usecase.RedeemParams{
		"user id": func(p usecase.RedeemParams) usecase.RedeemParams {
			p.UserID++
			return p
		},
		"expiry": func(p usecase.RedeemParams) usecase.RedeemParams {
			p.ExpiresAt += 3600
			return p
		},
		"nonce": func(p usecase.RedeemParams) usecase.RedeemParams {
			p.Nonce = "p-" + p.Nonce // upgrade to persistent without re-signing
			return p
		},
		"signature": func(p usecase.RedeemParams) usecase.RedeemParams {
			p.Signature = p.Signature[:len(p.Signature)-1] + "A"
			return p
		},
	}

	for name, mutate := range mutations {
		if _, err := u.Redeem(context.Background(), mutate(base)); !errors.Is(err, domain.ErrLinkInvalid) {
			t.Errorf("mutated %s: error = %v, want ErrLinkInvalid", name, err)
		}
	}
}

func TestRedeem_UnsignedDestinationIsTamperable(t *testing.T) {
	// The destination rides outside the signed payload; changing it does
	// not invalidate the link. Recorded behavior, not an accident.
	u := newRedeemer(accountRepoWith(activeAccount), &memGuard{})

	p := issueParams(t, activeAccount.ID, time.Hour, "/a", token.SingleUse)
	p.Destination = "/b"

	res, err := u.Redeem(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Redirect != "/b" {
		t.Errorf("redirect = %q, want /b", res.Redirect)
	}
}

func TestRedeem_EmptyDestinationDefaultsToRoot(t *testing.T) {
	u := newRedeemer(accountRepoWith(activeAccount), &memGuard{})

	res, err := u.Redeem(context.Background(), issueParams(t, activeAccount.ID, time.Hour, "", token.SingleUse))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Redirect != "/" {
		t.Errorf("redirect = %q, want /", res.Redirect)
	}
}

func TestRedeem_MissingAccount(t *testing.T) {
	u := newRedeemer(accountRepoWith(), &memGuard{})

	p := issueParams(t, 999, time.Hour, "", token.SingleUse)
	if _, err := u.Redeem(context.Background(), p); !errors.Is(err, domain.ErrAccountInvalid) {
		t.Errorf("error = %v, want ErrAccountInvalid", err)
	}
}

func TestRedeem_InactiveAccount(t *testing.T) {
	inactive := &domain.Account{ID: 5, Email: "gone@example.com", Active: false}
	u := newRedeemer(accountRepoWith(inactive), &memGuard{})

	p := issueParams(t, inactive.ID, time.Hour, "", token.SingleUse)
	if _, err := u.Redeem(context.Background(), p); !errors.Is(err, domain.ErrAccountInvalid) {
		t.Errorf("error = %v, want ErrAccountInvalid", err)
	}
}

func TestRedeem_GuardOutage_AcceptsOnSignatureAlone(t *testing.T) {
	guard := &memGuard{err: errors.New("replay store: connection refused")}
	u := newRedeemer(accountRepoWith(activeAccount), guard)

	p := issueParams(t, activeAccount.ID, time.Hour, "", token.SingleUse)
	if _, err := u.Redeem(context.Background(), p); err != nil {
		t.Errorf("redemption during guard outage failed: %v", err)
	}
}

func TestRedeem_PersistentSkipsGuard(t *testing.T) {
	// A guard that always errors would trip the single-use path; the
	// persistent path must never touch it.
	guard := &memGuard{err: errors.New("must not be called")}
	persistent := &domain.Account{ID: 7, Email: "ops@example.com", Active: true}

	var guardTouched bool
	checkGuard := &checkingGuard{inner: guard, touched: &guardTouched}

	u := usecase.NewRedeemUsecase(usecase.RedeemConfig{
		Accounts: accountRepoWith(persistent),
		Codec:    token.NewCodec([]byte(testSecret)),
		Guard:    checkGuard,
		Sessions: staticFinalizer("session-token"),
	}, slog.Default())

	p := issueParams(t, persistent.ID, time.Hour, "", token.Persistent)
	if _, err := u.Redeem(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if guardTouched {
		t.Error("persistent redemption consulted the replay guard")
	}
}

type checkingGuard struct {
	inner   *memGuard
	touched *bool
}

func (g *checkingGuard) ConsumeOnce(ctx context.Context, sig string, ttl time.Duration) (bool, error) {
	*g.touched = true
	return g.inner.ConsumeOnce(ctx, sig, ttl)
}

func TestRedeem_FinalizerErrorSurfacesAsInternal(t *testing.T) {
	finalizerErr := errors.New("session backend down")
	u := usecase.NewRedeemUsecase(usecase.RedeemConfig{
		Accounts: accountRepoWith(activeAccount),
		Codec:    token.NewCodec([]byte(testSecret)),
		Guard:    &memGuard{},
		Sessions: &fakeFinalizer{finalize: func(_ context.Context, _ *domain.Account) (string, error) {
			return "", finalizerErr
		}},
	}, slog.Default())

	p := issueParams(t, activeAccount.ID, time.Hour, "", token.SingleUse)
	_, err := u.Redeem(context.Background(), p)
	if !errors.Is(err, finalizerErr) {
		t.Errorf("error = %v, want wrapped finalizer error", err)
	}
	if errors.Is(err, domain.ErrLinkInvalid) || errors.Is(err, domain.ErrAccountInvalid) {
		t.Error("internal failure must not masquerade as a rejection")
	}
}
