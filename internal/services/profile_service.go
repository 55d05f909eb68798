package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/internal/models"
	"github.com/AnshRaj112/authgate-backend/internal/repository"
	"github.com/AnshRaj112/authgate-backend/pkg/utils"
)

// ProfileUpdate holds the optional changes of a profile update. Nil fields
// are left untouched.
type ProfileUpdate struct {
	FullName    *string
	UserName    *string
	PhoneNumber *string
	Gender      *string
	Avatar      io.Reader
}

func (u ProfileUpdate) empty() bool {
	return u.FullName == nil && u.UserName == nil && u.PhoneNumber == nil && u.Gender == nil && u.Avatar == nil
}

type ProfileService struct {
	store   repository.AccountStore
	avatars AvatarStorage // nil disables avatar uploads
	log     *zap.Logger
}

func NewProfileService(store repository.AccountStore, avatars AvatarStorage, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{store: store, avatars: avatars, log: log}
}

// UpdateProfile applies u to acc. A new avatar replaces the stored one and
// the previous image is removed from storage afterwards.
func (s *ProfileService) UpdateProfile(ctx context.Context, acc *models.Account, u ProfileUpdate) (*models.Account, error) {
	if u.empty() {
		return nil, apperr.Validation("Nothing to update")
	}

	if u.UserName != nil {
		name := utils.NormalizeUsername(*u.UserName)
		if name != acc.UserName {
			existing, err := s.store.FindByUserName(ctx, name)
			if err == nil && existing.ID != acc.ID {
				return nil, apperr.Conflict("Username is already taken")
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.Dependency("Failed to look up account", err)
			}
		}
		acc.UserName = name
	}
	if u.FullName != nil {
		acc.FullName = strings.TrimSpace(*u.FullName)
	}
	if u.PhoneNumber != nil {
		acc.PhoneNumber = strings.TrimSpace(*u.PhoneNumber)
	}
	if u.Gender != nil {
		acc.Gender = strings.ToLower(strings.TrimSpace(*u.Gender))
	}

	var previous, uploaded string
	if u.Avatar != nil {
		if s.avatars == nil {
			return nil, apperr.Dependency("Avatar uploads are not configured", nil)
		}
		avatar, err := s.avatars.UploadAvatar(ctx, u.Avatar)
		if err != nil {
			return nil, apperr.Dependency("Failed to upload avatar", err)
		}
		previous = acc.Avatar.PublicID
		uploaded = avatar.PublicID
		acc.Avatar = *avatar
	}

	if err := s.store.Save(ctx, acc); err != nil {
		if uploaded != "" {
			s.deleteAvatar(ctx, uploaded)
		}
		return nil, storeWriteError(err)
	}

	if previous != "" {
		s.deleteAvatar(ctx, previous)
	}
	return acc, nil
}

func (s *ProfileService) deleteAvatar(ctx context.Context, publicID string) {
	if err := s.avatars.DeleteAvatar(ctx, publicID); err != nil {
		s.log.Warn("failed to delete avatar", zap.String("public_id", publicID), zap.Error(err))
	}
}
