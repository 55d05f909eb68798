package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/internal/services"
)

const maxAvatarSize = 5 << 20

var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ProfileUpdateRequest holds the text fields of a profile update. Absent
// fields are nil and left unchanged.
type ProfileUpdateRequest struct {
	FullName    *string `json:"fullName" validate:"omitempty,max=80"`
	UserName    *string `json:"userName" validate:"omitempty,username"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,e164"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=male female other"`
}

type ProfileHandler struct {
	profiles *services.ProfileService
	validate StructValidator
}

func NewProfileHandler(profiles *services.ProfileService, v StructValidator) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, validate: v}
}

// Profile returns the signed-in account.
// GET /auth/profile
func (h *ProfileHandler) Profile(rc *RequestContext) (*Result, error) {
	return OK("Profile fetched successfully", UserPayload{User: rc.Account}), nil
}

// UpdateProfile changes profile fields and the avatar. It accepts
// multipart/form-data with an optional "avatar" file, or a JSON body.
// PATCH /auth/profile-update
func (h *ProfileHandler) UpdateProfile(rc *RequestContext) (*Result, error) {
	var req ProfileUpdateRequest
	var avatar multipart.File

	r := rc.Request
	err := r.ParseMultipartForm(maxAvatarSize + 1<<20)
	switch {
	case err == nil:
		defer r.MultipartForm.RemoveAll()
		req = formFields(r.MultipartForm)
		avatar, err = openAvatar(r.MultipartForm)
		if err != nil {
			return nil, err
		}
		if avatar != nil {
			defer avatar.Close()
		}
	case errors.Is(err, http.ErrNotMultipart):
		if err := rc.DecodeJSON(&req); err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Validation("Invalid form data")
	}

	if err := h.validate.Struct(&req); err != nil {
		return nil, err
	}

	update := services.ProfileUpdate{
		FullName:    req.FullName,
		UserName:    req.UserName,
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
	}
	if avatar != nil {
		update.Avatar = avatar
	}

	acc, err := h.profiles.UpdateProfile(rc.Context(), rc.Account, update)
	if err != nil {
		return nil, err
	}
	return OK("Profile updated successfully", UserPayload{User: acc}), nil
}

func formFields(form *multipart.Form) ProfileUpdateRequest {
	field := func(name string) *string {
		values, ok := form.Value[name]
		if !ok || len(values) == 0 {
			return nil
		}
		v := values[0]
		return &v
	}
	return ProfileUpdateRequest{
		FullName:    field("fullName"),
		UserName:    field("userName"),
		PhoneNumber: field("phoneNumber"),
		Gender:      field("gender"),
	}
}

// openAvatar returns the uploaded avatar, or nil when none was sent. The
// type is detected from the content, not the client supplied header.
func openAvatar(form *multipart.Form) (multipart.File, error) {
	files := form.File["avatar"]
	if len(files) == 0 {
		return nil, nil
	}
	header := files[0]
	if header.Size > maxAvatarSize {
		return nil, apperr.Validation("Avatar must be at most 5 MB",
			apperr.FieldError{Path: "avatar", Message: "file is too large"})
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperr.Validation("Invalid avatar file")
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, apperr.Validation("Invalid avatar file")
	}
	if !allowedAvatarTypes[http.DetectContentType(head[:n])] {
		file.Close()
		return nil, apperr.Validation("Avatar must be a JPEG, PNG or GIF image",
			apperr.FieldError{Path: "avatar", Message: "unsupported file type"})
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, apperr.Internal("Failed to read avatar", err)
	}
	return file, nil
}
