package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sbekbolat/maglink/internal/domain"
	"github.com/sbekbolat/maglink/internal/session"
	"github.com/sbekbolat/maglink/internal/usecase"
)

// issueUsecaser and redeemUsecaser are the subsets of the usecases the
// handler needs. Defined here (point of use) so tests can inject fakes.
type issueUsecaser interface {
	RequestLink(ctx context.Context, email string)
	ValidateAddress(ctx context.Context, email string) string
}

type redeemUsecaser interface {
	Redeem(ctx context.Context, p usecase.RedeemParams) (*usecase.RedeemResult, error)
}

type AuthHandler struct {
	issue         issueUsecaser
	redeem        redeemUsecaser
	sessionTTL    time.Duration
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(issue issueUsecaser, redeem redeemUsecaser, sessionTTL time.Duration, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		issue:         issue,
		redeem:        redeem,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
		logger:        logger.With("component", "auth_handler"),
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

// POST /auth/magic-link
// Always answers 200 with the same body: neither malformed input nor an
// unknown address nor a delivery failure may change the response.
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Email != "" {
		h.issue.RequestLink(c.Request.Context(), req.Email)
	}

	c.JSON(http.StatusOK, gin.H{"message": msgNeutralConfirmation})
}

// POST /auth/validate
// Classifies an address for client-side hinting: empty, invalid-format or
// ok. With neutral validation on (the default) "ok" says nothing about
// account existence.
func (h *AuthHandler) ValidateEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	status := h.issue.ValidateAddress(c.Request.Context(), req.Email)
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GET /auth/redeem?uid=&exp=&nonce=&sig=&destination=
// Redirects to the destination on success; rejections render inline with
// no redirect.
func (h *AuthHandler) Redeem(c *gin.Context) {
	uid, uidErr := strconv.ParseInt(c.Query("uid"), 10, 64)
	exp, expErr := strconv.ParseInt(c.Query("exp"), 10, 64)
	if uidErr != nil || expErr != nil || c.Query("sig") == "" || c.Query("nonce") == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errLinkInvalid})
		return
	}

	res, err := h.redeem.Redeem(c.Request.Context(), usecase.RedeemParams{
		UserID:      uid,
		ExpiresAt:   exp,
		Nonce:       c.Query("nonce"),
		Signature:   c.Query("sig"),
		Destination: c.Query("destination"),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLinkInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errLinkInvalid})
		case errors.Is(err, domain.ErrAccountInvalid):
			c.JSON(http.StatusForbidden, gin.H{"error": errAccountInvalid})
		default:
			h.logger.ErrorContext(c.Request.Context(), "redeem link", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.SetCookie(session.CookieName, res.SessionToken,
		int(h.sessionTTL.Seconds()), "/", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, res.Redirect)
}

// GET /auth/session (behind middleware.Session)
// Lets a logged-in client confirm who it is.
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": c.GetInt64("userID"),
		"email":   c.GetString("email"),
	})
}
