package helpers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
		Roles     []string `json:"roles,omitempty"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenValidator checks Supabase access tokens against the project's JWKS.
// The key set is fetched once and refreshed in the background.
type TokenValidator struct {
	jwksURL         string
	allowUnverified bool

	mu   sync.Mutex
	jwks *keyfunc.JWKS
}

// NewTokenValidator builds a validator for the project at supabaseURL. When
// allowUnverified is true (development only) tokens are parsed without a
// signature check if the key set cannot be fetched.
func NewTokenValidator(supabaseURL string, allowUnverified bool) *TokenValidator {
	return &TokenValidator{
		jwksURL:         fmt.Sprintf("%s/auth/v1/.well-known/jwks.json", strings.TrimRight(supabaseURL, "/")),
		allowUnverified: allowUnverified,
	}
}

func (v *TokenValidator) keySet() (*keyfunc.JWKS, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.jwks != nil {
		return v.jwks, nil
	}

	jwks, err := keyfunc.Get(v.jwksURL, keyfunc.Options{
		Ctx:               context.Background(),
		RefreshInterval:   time.Hour,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, err
	}
	v.jwks = jwks
	return jwks, nil
}

func (v *TokenValidator) ValidateToken(tokenStr string) (*CustomClaims, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, errors.New("empty token")
	}

	jwks, err := v.keySet()
	if err != nil {
		if !v.allowUnverified {
			return nil, fmt.Errorf("failed to load signing keys: %v", err)
		}
		return ParseUnverified(tokenStr)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// Close stops the background key refresh.
func (v *TokenValidator) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.jwks != nil {
		v.jwks.EndBackground()
		v.jwks = nil
	}
}

// ParseUnverified reads claims without checking the signature. Expiry is still enforced.
func ParseUnverified(tokenStr string) (*CustomClaims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenStr, &CustomClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %v", err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

var (
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	numberPattern  = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[@$!%*?&]`)
)

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	return lowerPattern.MatchString(password) &&
		upperPattern.MatchString(password) &&
		numberPattern.MatchString(password) &&
		specialPattern.MatchString(password)
}
