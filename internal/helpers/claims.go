package helpers

// EnhancedClaims are the token claims merged with the caller's profile row.
type EnhancedClaims struct {
	*CustomClaims
	Role        string `json:"role"`
	UserID      string `json:"id"`
	Email       string `json:"email,omitempty"`
	Username    string `json:"username,omitempty"`
	Fullname    string `json:"fullname,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == "admin"
}

func (ec *EnhancedClaims) IsHost() bool {
	return ec.Role == "host"
}

func (ec *EnhancedClaims) IsProvider() bool {
	return ec.Role == "provider"
}

// CanList reports whether the caller may publish events, spaces or services.
func (ec *EnhancedClaims) CanList() bool {
	return ec.IsAdmin() || ec.IsHost() || ec.IsProvider()
}

func (ec *EnhancedClaims) HasRole(role string) bool {
	return ec.Role == role
}

func (ec *EnhancedClaims) IsOwner(userID string) bool {
	return ec.UserID == userID
}

func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return "guest"
	}
	return ec.Role
}
