package services

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/AnshRaj112/authgate-backend/internal/models"
)

const (
	AvatarFolder         = "avatars"
	avatarTransformation = "c_fill,w_150,h_150"
)

//go:generate mockgen -destination=../mocks/mock_avatar_storage.go -package=mocks github.com/AnshRaj112/authgate-backend/internal/services AvatarStorage

// AvatarStorage stores profile pictures.
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, file io.Reader) (*models.Avatar, error)
	DeleteAvatar(ctx context.Context, publicID string) error
}

type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld:    cld,
		folder: AvatarFolder,
	}, nil
}

// UploadAvatar uploads an image cropped to 150x150.
func (s *CloudinaryService) UploadAvatar(ctx context.Context, file io.Reader) (*models.Avatar, error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	uploadResult, err := s.cld.Upload.Upload(ctx, fileBytes, uploader.UploadParams{
		Folder:         s.folder,
		ResourceType:   "image",
		Transformation: avatarTransformation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if uploadResult.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %s", uploadResult.Error.Message)
	}

	return &models.Avatar{
		URL:      uploadResult.SecureURL,
		PublicID: uploadResult.PublicID,
	}, nil
}

func (s *CloudinaryService) DeleteAvatar(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from Cloudinary: %w", err)
	}
	return nil
}
