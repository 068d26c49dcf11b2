package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/helpers"
	"github.com/joshua-takyi/evently/internal/models"
)

// profile columns a user may change on their own row
var editableProfileFields = map[string]bool{
	"username":     true,
	"fullname":     true,
	"bio":          true,
	"location":     true,
	"preferences":  true,
	"phone_number": true,
}

type UserService struct {
	userRepo models.UserRepo
	uploader ImageUploader
}

func NewUserService(userRepo models.UserRepo, uploader ImageUploader) *UserService {
	return &UserService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (us *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := models.Validate.Struct(user); err != nil {
		return nil, models.NewValidationError("", err.Error())
	}

	if !helpers.IsPasswordStrong(user.Password) {
		return nil, models.NewValidationError("password", "password is not strong enough")
	}

	switch user.Role {
	case "", models.RoleUser:
		user.Role = models.RoleUser
	case models.RoleProvider, models.RoleHost:
	default:
		return nil, models.NewValidationError("role", "role must be user, provider or host")
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	return us.userRepo.CreateUser(ctx, user)
}

func (us *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.AuthSession, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, models.NewValidationError("email", "invalid email format")
	}
	if err := models.Validate.Var(password, "required,min=8"); err != nil {
		return nil, models.NewValidationError("password", "invalid password format")
	}
	response, err := us.userRepo.AuthenticateUser(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return response, nil
}

func (us *UserService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthSession, error) {
	if refreshToken == "" {
		return nil, models.NewValidationError("refresh_token", "refresh token is required")
	}
	response, err := us.userRepo.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return response, nil
}

func (us *UserService) GetUser(ctx context.Context, id uuid.UUID, accessToken string) (*models.User, error) {
	res, err := us.userRepo.GetUser(ctx, id, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return res, nil
}

func (us *UserService) UpdateUser(ctx context.Context, fields map[string]interface{}, userid uuid.UUID, accessToken string) (*models.User, error) {
	update := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		if !editableProfileFields[k] {
			return nil, models.NewValidationError(k, "field cannot be updated")
		}
		update[k] = v
	}
	if len(update) == 0 {
		return nil, models.NewValidationError("", "no fields to update")
	}
	update["updated_at"] = time.Now()

	updatedUser, err := us.userRepo.UpdateUser(ctx, update, userid, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return updatedUser, nil
}

func (us *UserService) DeleteUser(ctx context.Context, id uuid.UUID, accessToken string) error {
	if err := us.userRepo.DeleteUser(ctx, id, accessToken); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (us *UserService) UploadAvatar(ctx context.Context, userId uuid.UUID, imageData string, accessToken string) (string, error) {
	if userId == uuid.Nil {
		return "", models.NewValidationError("id", "no valid UUID provided")
	}
	if strings.TrimSpace(imageData) == "" {
		return "", models.NewValidationError("image", "image is required")
	}

	urls, err := uploadIfAny(ctx, us.uploader, []string{imageData}, helpers.AvatarFolder)
	if err != nil {
		return "", err
	}
	if len(urls) == 0 {
		return "", models.NewValidationError("image", "image is required")
	}

	avatarURL, err := us.userRepo.UploadAvatar(ctx, userId, urls[0], accessToken)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return avatarURL, nil
}
