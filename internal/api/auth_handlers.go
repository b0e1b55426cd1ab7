// Package api - Authentication handlers
package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
	"github.com/aethra/catalog-admin/internal/ui"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxLoginAttempts = 5
	loginWindow      = 5 * time.Minute
	loginBlock       = 15 * time.Minute
	limiterRetention = 30 * time.Minute
)

// LoginRateLimiter implements rate limiting for login attempts
type LoginRateLimiter struct {
	attempts map[string]*loginAttempt
	mu       sync.Mutex
	now      func() time.Time
}

type loginAttempt struct {
	count     int
	firstTry  time.Time
	blockedAt *time.Time
}

// NewLoginRateLimiter creates a new rate limiter
func NewLoginRateLimiter() *LoginRateLimiter {
	return &LoginRateLimiter{
		attempts: make(map[string]*loginAttempt),
		now:      time.Now,
	}
}

// Allow checks if a login attempt is allowed. It returns the attempts left
// in the window, or how long the key stays blocked.
func (rl *LoginRateLimiter) Allow(key string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	attempt, exists := rl.attempts[key]

	if !exists {
		rl.attempts[key] = &loginAttempt{count: 1, firstTry: now}
		return true, maxLoginAttempts - 1, 0
	}

	if attempt.blockedAt != nil {
		if blocked := now.Sub(*attempt.blockedAt); blocked < loginBlock {
			return false, 0, loginBlock - blocked
		}
		attempt.count = 1
		attempt.firstTry = now
		attempt.blockedAt = nil
		return true, maxLoginAttempts - 1, 0
	}

	if now.Sub(attempt.firstTry) > loginWindow {
		attempt.count = 1
		attempt.firstTry = now
		return true, maxLoginAttempts - 1, 0
	}

	attempt.count++
	if attempt.count > maxLoginAttempts {
		attempt.blockedAt = &now
		return false, 0, loginBlock
	}

	return true, maxLoginAttempts - attempt.count, 0
}

// Reset resets the attempts for a key (on successful login)
func (rl *LoginRateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, key)
}

// Cleanup removes entries older than the retention period
func (rl *LoginRateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, attempt := range rl.attempts {
		if now.Sub(attempt.firstTry) > limiterRetention {
			delete(rl.attempts, key)
			removed++
		}
	}
	return removed
}

// Run cleans up old entries periodically until ctx is done
func (rl *LoginRateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

// LoginPage serves the sign-in form
// GET /login
func (h *Handler) LoginPage(c *gin.Context) {
	if h.hasSession(c) {
		c.Redirect(http.StatusSeeOther, "/panel")
		return
	}
	h.html(c, http.StatusOK, ui.PageLogin, &ui.LoginPage{SetupOpen: h.setupOpen(c)})
}

// Login authenticates an operator and sets the session cookie
// POST /login
func (h *Handler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	page := &ui.LoginPage{Email: email}

	if email == "" || password == "" {
		page.Error = "Email and password are required"
		h.html(c, http.StatusBadRequest, ui.PageLogin, page)
		return
	}

	// Rate limiting key: IP + email combination
	rateLimitKey := c.ClientIP() + ":" + strings.ToLower(email)

	allowed, _, retryAfter := h.limiter.Allow(rateLimitKey)
	if !allowed {
		minutes := int(math.Ceil(retryAfter.Minutes()))
		c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
		page.Error = fmt.Sprintf("Too many login attempts. Please wait %d minutes before trying again.", minutes)
		h.html(c, http.StatusTooManyRequests, ui.PageLogin, page)
		return
	}

	ctx := c.Request.Context()
	op, err := h.operators.FindByEmail(ctx, email)
	if err != nil {
		var nf *errors.NotFoundError
		if stderrors.As(err, &nf) {
			page.Error = "Invalid credentials"
			h.html(c, http.StatusUnauthorized, ui.PageLogin, page)
			return
		}
		h.htmlError(c, errors.NewInternalError(err))
		return
	}

	if !op.IsActive {
		page.Error = "Account is disabled"
		h.html(c, http.StatusUnauthorized, ui.PageLogin, page)
		return
	}

	if !auth.CheckPassword(password, op.PasswordHash) {
		page.Error = "Invalid credentials"
		h.html(c, http.StatusUnauthorized, ui.PageLogin, page)
		return
	}

	h.limiter.Reset(rateLimitKey)

	if err := h.startSession(c, op); err != nil {
		h.htmlError(c, errors.NewInternalError(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/panel")
}

// Logout discards the panel session and clears the cookie
// POST /logout
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		if claims, err := h.jwt.ValidateToken(token); err == nil {
			h.sessions.Drop(claims.SessionID())
			h.log.Info("operator signed out", zap.String("operator", claims.Email))
		}
	}
	h.clearCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

// startSession issues a token for op and stores it in the cookie
func (h *Handler) startSession(c *gin.Context, op *models.Operator) error {
	token, err := h.jwt.GenerateToken(op)
	if err != nil {
		return err
	}

	if err := h.operators.TouchLogin(c.Request.Context(), op.ID); err != nil {
		h.log.Warn("failed to record login time", zap.String("operator", op.Email), zap.Error(err))
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token.Value, int(time.Until(token.ExpiresAt).Seconds()), "/", "", h.cookie.Secure, true)
	h.log.Info("operator signed in", zap.String("operator", op.Email), zap.String("role", string(op.Role)))
	return nil
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

func (h *Handler) hasSession(c *gin.Context) bool {
	token, err := c.Cookie(h.cookie.Name)
	if err != nil || token == "" {
		return false
	}
	_, err = h.jwt.ValidateToken(token)
	return err == nil
}

// setupOpen reports whether no operator exists yet
func (h *Handler) setupOpen(c *gin.Context) bool {
	count, err := h.operators.Count(c.Request.Context())
	if err != nil {
		h.log.Warn("failed to count operators", zap.Error(err))
		return false
	}
	return count == 0
}
