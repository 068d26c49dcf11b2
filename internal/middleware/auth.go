package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/helpers"
	"github.com/joshua-takyi/evently/internal/models"
)

const (
	ClaimsKey      = "user"
	AccessTokenKey = "access_token"

	refreshCookieMaxAge = 3600 * 24 * 30 // 30 days
)

type TokenValidator interface {
	ValidateToken(token string) (*helpers.CustomClaims, error)
}

// SessionService is the part of the user service the auth layer needs.
type SessionService interface {
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthSession, error)
	GetUser(ctx context.Context, id uuid.UUID, accessToken string) (*models.User, error)
}

type Auth struct {
	validator     TokenValidator
	sessions      SessionService
	logger        *slog.Logger
	secureCookies bool
}

func NewAuth(validator TokenValidator, sessions SessionService, logger *slog.Logger, secureCookies bool) *Auth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{validator: validator, sessions: sessions, logger: logger, secureCookies: secureCookies}
}

// tokenFrom reads the bearer header first, then the access_token cookie, then
// (for WebSocket upgrades) the token query parameter.
func tokenFrom(r *http.Request) (token string, fromCookie bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), false
	}
	if ck, err := r.Cookie(AccessTokenKey); err == nil && ck.Value != "" {
		return ck.Value, true
	}
	return r.URL.Query().Get("token"), false
}

// Authenticate validates the request's token and merges the caller's profile.
func (a *Auth) Authenticate(r *http.Request) (*helpers.EnhancedClaims, string, error) {
	token, _ := tokenFrom(r)
	if token == "" {
		return nil, "", errNoToken
	}
	claims, err := a.validator.ValidateToken(token)
	if err != nil {
		return nil, "", err
	}
	return a.enrich(r.Context(), claims, token), token, nil
}

func (a *Auth) enrich(ctx context.Context, claims *helpers.CustomClaims, token string) *helpers.EnhancedClaims {
	enhanced := &helpers.EnhancedClaims{
		CustomClaims: claims,
		Role:         models.RoleGuest,
		UserID:       claims.Subject,
		Email:        claims.Email,
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		a.logger.Error("Invalid user ID in token", "user_id", claims.Subject, "error", err)
		return enhanced
	}
	if a.sessions == nil {
		return enhanced
	}
	user, err := a.sessions.GetUser(ctx, userID, token)
	if err != nil {
		a.logger.Info("Profile not found, using default role", "user_id", claims.Subject, "error", err)
		return enhanced
	}
	if user.Role != "" {
		enhanced.Role = user.Role
	}
	enhanced.Username = user.Username
	enhanced.Fullname = user.FullName
	enhanced.PhoneNumber = user.PhoneNumber
	enhanced.AvatarURL = user.AvatarURL
	if !user.CreatedAt.IsZero() {
		enhanced.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}
	return enhanced
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(msg))
}

// Required rejects requests without a valid token. Cookie sessions with an
// expired access token are refreshed transparently.
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := tokenFrom(c.Request)
		if token == "" {
			unauthorized(c, "Unauthorized access")
			return
		}

		claims, err := a.validator.ValidateToken(token)
		if err != nil && fromCookie {
			token, claims, err = a.refresh(c)
		}
		if err != nil {
			unauthorized(c, "Unauthorized access")
			return
		}

		c.Set(ClaimsKey, a.enrich(c.Request.Context(), claims, token))
		c.Set(AccessTokenKey, token)
		c.Next()
	}
}

// Optional attaches claims when a valid token is present and never rejects.
func (a *Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, token, err := a.Authenticate(c.Request); err == nil {
			c.Set(ClaimsKey, claims)
			c.Set(AccessTokenKey, token)
		}
		c.Next()
	}
}

func (a *Auth) refresh(c *gin.Context) (string, *helpers.CustomClaims, error) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil || a.sessions == nil {
		return "", nil, fmt.Errorf("no refresh token")
	}
	session, err := a.sessions.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil || session.AccessToken == "" {
		a.logger.Error("Token refresh failed", "error", err)
		return "", nil, fmt.Errorf("token expired and refresh failed")
	}
	a.logger.Info("Token refreshed successfully", "user_id", session.UserID, "expires_in", session.ExpiresIn)
	SetSessionCookies(c, session, a.secureCookies)

	claims, err := a.validator.ValidateToken(session.AccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("refreshed token validation failed: %w", err)
	}
	return session.AccessToken, claims, nil
}

// SetSessionCookies stores the session as http-only cookies.
func SetSessionCookies(c *gin.Context, session *models.AuthSession, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenKey, session.AccessToken, session.ExpiresIn, "/", "", secure, true)
	c.SetCookie("refresh_token", session.RefreshToken, refreshCookieMaxAge, "/", "", secure, true)
}

func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetCookie(AccessTokenKey, "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// RequireRole only lets through callers whose profile role is listed.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			unauthorized(c, "Unauthorized access")
			return
		}
		for _, r := range roles {
			if claims.HasRole(r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse("You do not have permission to do this"))
	}
}

func GetClaims(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.EnhancedClaims)
	return claims, ok && claims != nil
}
