package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

const profileColumns = "id,auth_uid,email,username,fullname,role,location,bio,preferences,phone_number,is_verified,avatar_url,created_at,updated_at"

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*AuthSession, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthSession, error)
	GetUser(ctx context.Context, id uuid.UUID, accessToken string) (*User, error)
	UpdateUser(ctx context.Context, user map[string]interface{}, userid uuid.UUID, accessToken string) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID, accessToken string) error
	UploadAvatar(ctx context.Context, userId uuid.UUID, imageURL string, accessToken string) (string, error)
}

func ConvertToUser(raw map[string]interface{}) (*User, error) {
	userBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raw user: %v", err)
	}

	user := &User{}
	if err := json.Unmarshal(userBytes, user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to user struct: %v", err)
	}

	return user, nil
}

func sessionFromToken(res *types.TokenResponse) *AuthSession {
	return &AuthSession{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
		UserID:       res.User.ID.String(),
		Email:        res.User.Email,
	}
}

// cleanSignupError maps gotrue/postgres messages to something a user can act on.
func cleanSignupError(err error) error {
	errMsg := err.Error()
	switch {
	case strings.Contains(strings.ToLower(errMsg), "already registered"):
		return fmt.Errorf("email already in use: %w", ErrConflict)
	case strings.Contains(errMsg, "null value in column"):
		if strings.Contains(errMsg, "username") {
			return NewValidationError("username", "username is required")
		}
		return NewValidationError("", "required field is missing")
	case strings.Contains(errMsg, "unique constraint"):
		return fmt.Errorf("user already exists: %w", ErrConflict)
	case strings.Contains(errMsg, "invalid input syntax"):
		return NewValidationError("", "invalid input format")
	}
	return fmt.Errorf("failed to create user")
}

func (su *SupabaseRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	res, err := su.supabaseClient.Auth.Signup(types.SignupRequest{
		Email:    user.Email,
		Password: user.Password,
		Data: map[string]interface{}{
			"username": user.Username,
			"fullname": user.FullName,
		},
	})
	if err != nil {
		return nil, cleanSignupError(err)
	}

	created := *user
	created.Password = ""
	created.ID = res.User.ID
	created.AuthUID = res.User.ID.String()
	if created.Role == "" {
		created.Role = RoleUser
	}

	profile := map[string]interface{}{
		"id":           created.ID,
		"auth_uid":     created.AuthUID,
		"email":        created.Email,
		"username":     created.Username,
		"fullname":     created.FullName,
		"role":         created.Role,
		"phone_number": created.PhoneNumber,
		"created_at":   created.CreatedAt,
		"updated_at":   created.UpdatedAt,
	}
	if _, _, err := su.supabaseClient.From(ProfileTable).Upsert(profile, "id", "", "").Execute(); err != nil {
		return nil, cleanSignupError(err)
	}
	return &created, nil
}

func (su *SupabaseRepo) GetUser(ctx context.Context, id uuid.UUID, accessToken string) (*User, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}

	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	raw, status, err := client.From(ProfileTable).
		Select(profileColumns, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		// include response status and body when available so caller can distinguish
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get user by ID: %v", err)
	}

	// Supabase returns an array even for single results
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user rows: %v", err)
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	if len(users) > 1 {
		return nil, fmt.Errorf("multiple users found for ID %s", id)
	}

	return &users[0], nil
}

func (su *SupabaseRepo) UpdateUser(ctx context.Context, user map[string]interface{}, userid uuid.UUID, accessToken string) (*User, error) {
	if userid == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}

	if len(user) == 0 {
		return nil, NewValidationError("", "no fields to update")
	}

	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	raw, count, err := client.From(ProfileTable).
		Update(user, "", "exact").
		Eq("id", userid.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}

	if count == 0 {
		return nil, fmt.Errorf("no user found to update: %w", ErrNotFound)
	}

	var rawUsers []map[string]interface{}
	if err := json.Unmarshal(raw, &rawUsers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated user: %v", err)
	}

	if len(rawUsers) == 0 {
		return nil, fmt.Errorf("no user data returned after update")
	}

	return ConvertToUser(rawUsers[0])
}

func (su *SupabaseRepo) DeleteUser(ctx context.Context, id uuid.UUID, accessToken string) error {
	if id == uuid.Nil {
		return fmt.Errorf("no valid UUID provided")
	}
	client, err := su.clientFor(accessToken)
	if err != nil {
		return err
	}

	_, count, err := client.From(ProfileTable).Delete("", "exact").Eq("id", id.String()).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}

	if count == 0 {
		return fmt.Errorf("no user found to delete: %w", ErrNotFound)
	}
	return nil
}

func (su *SupabaseRepo) AuthenticateUser(ctx context.Context, email, password string) (*AuthSession, error) {
	resp, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate user: %v", err)
	}
	return sessionFromToken(resp), nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (*AuthSession, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %v", err)
	}
	return sessionFromToken(resp), nil
}

func (su *SupabaseRepo) UploadAvatar(ctx context.Context, userId uuid.UUID, imageURL string, accessToken string) (string, error) {
	updated, err := su.UpdateUser(ctx, map[string]interface{}{"avatar_url": imageURL}, userId, accessToken)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return updated.AvatarURL, nil
}
