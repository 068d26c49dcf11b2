package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleGuest    = "guest"
	RoleUser     = "user"
	RoleProvider = "provider"
	RoleHost     = "host"
	RoleAdmin    = "admin"
)

type User struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	AuthUID     string            `db:"auth_uid" json:"auth_uid,omitempty"`
	Username    string            `db:"username" json:"username"`
	FullName    string            `db:"fullname" json:"fullname"`
	Email       string            `db:"email" json:"email" validate:"required,email"`
	Password    string            `db:"password" json:"password,omitempty" validate:"required,min=8"`
	IsVerified  bool              `db:"is_verified" json:"is_verified"`
	Bio         string            `db:"bio" json:"bio"`
	Role        string            `db:"role" json:"role"`
	Location    string            `db:"location" json:"location"`
	Preferences map[string]string `db:"preferences" json:"preferences"`
	PhoneNumber string            `db:"phone_number" json:"phone_number"`
	AvatarURL   string            `db:"avatar_url" json:"avatar_url"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// AuthSession is what sign-in and refresh hand back to callers.
type AuthSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}
