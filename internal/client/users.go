package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

type UsersClient struct{ c *Client }

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username,omitempty"`
	FullName    string `json:"fullname,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role,omitempty"`
}

func (u *UsersClient) SignUp(ctx context.Context, req SignUpRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, &ValidationError{Field: "email", Message: "email and password are required"}
	}
	var user models.User
	if _, err := u.c.do(ctx, http.MethodPost, "/auth/signup", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UsersClient) SignIn(ctx context.Context, email, password string) (*models.AuthSession, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Field: "email", Message: "email and password are required"}
	}
	var session models.AuthSession
	body := map[string]string{"email": email, "password": password}
	if _, err := u.c.do(ctx, http.MethodPost, "/auth/signin", nil, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (u *UsersClient) Refresh(ctx context.Context, refreshToken string) (*models.AuthSession, error) {
	var session models.AuthSession
	body := map[string]string{"refresh_token": refreshToken}
	if _, err := u.c.do(ctx, http.MethodPost, "/auth/refresh", nil, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (u *UsersClient) Logout(ctx context.Context) error {
	_, err := u.c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	return err
}

func (u *UsersClient) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if _, err := u.c.do(ctx, http.MethodGet, "/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UsersClient) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if _, err := u.c.do(ctx, http.MethodGet, "/users/"+id.String(), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UsersClient) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.User, error) {
	var user models.User
	if _, err := u.c.do(ctx, http.MethodPatch, "/users/"+id.String(), nil, fields, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UsersClient) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := u.c.do(ctx, http.MethodDelete, "/users/"+id.String(), nil, nil, nil)
	return err
}

// UploadAvatar sends a data URI or remote URL and returns the stored avatar URL.
func (u *UsersClient) UploadAvatar(ctx context.Context, image string) (string, error) {
	var out struct {
		AvatarURL string `json:"avatar_url"`
	}
	if _, err := u.c.do(ctx, http.MethodPost, "/me/avatar", nil, map[string]string{"image": image}, &out); err != nil {
		return "", err
	}
	return out.AvatarURL, nil
}
