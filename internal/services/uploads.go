package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/evently/internal/helpers"
)

const uploadTimeout = 30 * time.Second

type ImageUploader interface {
	Upload(ctx context.Context, images []string, folder string) ([]string, error)
	Delete(ctx context.Context, urls []string)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

func (u *CloudinaryUploader) Upload(ctx context.Context, images []string, folder string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	urls, err := helpers.UploadImages(ctx, u.cld, images, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload images: %v", err)
	}
	return urls, nil
}

func (u *CloudinaryUploader) Delete(ctx context.Context, urls []string) {
	helpers.DeleteImages(ctx, u.cld, urls)
}

// uploadIfAny uploads images when an uploader is configured, otherwise returns them untouched.
func uploadIfAny(ctx context.Context, up ImageUploader, images []string, folder string) ([]string, error) {
	if up == nil || len(images) == 0 {
		return images, nil
	}
	return up.Upload(ctx, images, folder)
}
