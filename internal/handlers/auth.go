package handlers

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/internal/middleware"
	"github.com/AnshRaj112/authgate-backend/internal/models"
	"github.com/AnshRaj112/authgate-backend/internal/services"
)

// StructValidator validates decoded request bodies.
type StructValidator interface {
	Struct(s any) error
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	UserName string `json:"userName" validate:"required,username"`
	FullName string `json:"fullName" validate:"omitempty,max=80"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type VerifyEmailRequest struct {
	Code  string `json:"code" validate:"required,len=6,numeric"`
	Email string `json:"email" validate:"omitempty,email"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,strongpassword"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strongpassword"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type SocialLoginRequest struct {
	Email        string `json:"email" validate:"required,email"`
	UserName     string `json:"userName" validate:"required,max=50"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url"`
	Provider     string `json:"provider" validate:"required,oneof=google facebook github"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type CheckUserNameRequest struct {
	UserName string `json:"userName" validate:"required"`
}

// AuthPayload is the data of responses that start a session.
type AuthPayload struct {
	User        *models.Account     `json:"user"`
	AccessToken string              `json:"accessToken,omitempty"`
	Tokens      *services.TokenPair `json:"tokens,omitempty"`
}

type UserPayload struct {
	User *models.Account `json:"user"`
}

type AccessTokenPayload struct {
	AccessToken          string    `json:"accessToken"`
	AccessTokenExpiresAt time.Time `json:"accessTokenExpiresAt"`
}

type AuthHandler struct {
	auth     *services.AuthService
	validate StructValidator
	cookies  CookieConfig
}

func NewAuthHandler(auth *services.AuthService, v StructValidator, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, validate: v, cookies: cookies}
}

func (h *AuthHandler) bind(rc *RequestContext, dst any) error {
	if err := rc.DecodeJSON(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

func (h *AuthHandler) setSession(rc *RequestContext, pair *services.TokenPair) {
	rc.SetCookie(h.cookies.Access(pair.AccessToken))
	rc.SetCookie(h.cookies.Refresh(pair.RefreshToken))
}

func (h *AuthHandler) clearSession(rc *RequestContext) {
	for _, c := range h.cookies.Clear() {
		rc.SetCookie(c)
	}
}

// SignUp creates an account and mails its verification code.
// POST /auth/sign-up
func (h *AuthHandler) SignUp(rc *RequestContext) (*Result, error) {
	var req SignUpRequest
	if err := h.bind(rc, &req); err != nil {
		return nil, err
	}

	res, err := h.auth.SignUp(rc.Context(), services.SignUpInput{
		Email:    req.Email,
		UserName: req.UserName,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	rc.SetCookie(h.cookies.Refresh(res.Tokens.RefreshToken))
	return &Result{
		Status:  http.StatusCreated,
		Message: "Account created. Check your email for the verification code.",
		Data:    AuthPayload{User: res.Account, Tokens: res.Tokens},
	}, nil
}

// VerifyEmail consumes a verification code.
// POST /auth/verify
func (h *AuthHandler) VerifyEmail(rc *RequestContext) (*Result, error) {
	var req VerifyEmailRequest
	if err := rc.DecodeJSON(&req); err != nil {
		return nil, err
	}
	// Malformed codes get the same answer as unknown ones.
	if err := h.validate.Struct(&req); err != nil {
		return nil, apperr.Validation(services.MsgInvalidOTP)
	}

	acc, err := h.auth.VerifyEmail(rc.Context(), req.Code, req.Email)
	if err != nil {
		return nil, err
	}
	return OK("Email verified successfully", UserPayload{User: acc}), nil
}

// ResendVerification mails a new code to an unverified account.
// POST /auth/resend-verification
func (h *AuthHandler) ResendVerification(rc *RequestContext) (*Result, error) {
	var req EmailRequest
	if err := h.bind(rc, &req); err != nil {
		return nil, err
	}
	if err := h.auth.ResendVerification(rc.Context(), req.Email); err != nil {
		return nil, err
	}
	return OK("If the account exists and is not verified yet, a new code has been sent.", nil), nil
}

// SignIn authenticates with email and password.
// POST /auth/sign-in
func (h *AuthHandler) SignIn(rc *RequestContext) (*Result, error) {
	var req SignInRequest
	if err := rc.DecodeJSON(&req); err != nil {
		return nil, err
	}
	if err := h.validate.Struct(&req); err != nil {
		return nil, apperr.Authentication(services.MsgInvalidCredentials)
	}

	res, err := h.auth.SignIn(rc.Context(), req.Email, req.Password, rc.Client)
	if err != nil {
		return nil, err
	}

	h.setSession(rc, res.Tokens)
	return OK("Signed in successfully", AuthPayload{
		User:        res.Account,
		AccessToken: res.Tokens.AccessToken,
	}), nil
}

// SignOut revokes the current session and clears the cookies. It succeeds
// without a session.
// POST /auth/sign-out
func (h *AuthHandler) SignOut(rc *RequestContext) (*Result, error) {
	token := rc.Cookie(middleware.RefreshTokenCookie)
	if token == "" {
		var req RefreshTokenRequest
		_ = rc.DecodeJSON(&req)
		token = req.RefreshToken
	}

	h.clearSession(rc)
	if err := h.auth.SignOut(rc.Context(), token); err != nil {
		return nil, err
	}
	return OK("Signed out successfully", nil), nil
}

// RefreshToken mints a new access token from the refresh token cookie.
// POST /auth/refresh-token
func (h *AuthHandler) RefreshToken(rc *RequestContext) (*Result, error) {
	token := rc.Cookie(middleware.RefreshTokenCookie)
	if token == "" {
		var req RefreshTokenRequest
		if err := rc.DecodeJSON(&req); err != nil {
			return nil, err
		}
		token = req.RefreshToken
	}
	if token == "" {
		return nil, apperr.Authentication(services.MsgUnauthorized)
	}

	access, exp, err := h.auth.RefreshAccessToken(rc.Context(), token)
	if err != nil {
		if apperr.IsKind(err, apperr.KindAuthentication) {
			h.clearSession(rc)
		}
		return nil, err
	}

	rc.SetCookie(h.cookies.Access(access))
	return OK("Access token refreshed", AccessTokenPayload{AccessToken: access, AccessTokenExpiresAt: exp}), nil
}

// ForgotPassword mails a reset link. The answer does not reveal whether the
// email is registered.
// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(rc *RequestContext) (*Result, error) {
	var req EmailRequest
	if err := h.bind(rc, &req); err != nil {
		return nil, err
	}
	if err := h.auth.ForgotPassword(rc.Context(), req.Email); err != nil {
		return nil, err
	}
	return OK("If an account with that email exists, a password reset link has been sent.", nil), nil
}

// ResetPassword sets a new password with a reset token.
// POST /auth/reset-password/{token}
func (h *AuthHandler) ResetPassword(rc *RequestContext) (*Result, error) {
	var req ResetPasswordRequest
	if err := h.bind(rc, &req); err != nil {
		return nil, err
	}
	if err := h.auth.ResetPassword(rc.Context(), rc.Param("token"), req.Password); err != nil {
		return nil, err
	}
	h.clearSession(rc)
	return OK("Password reset successfully. Please sign in with your new password.", nil), nil
}

// ChangePassword replaces the password of the signed-in account.
// PUT /auth/change-password
func (h *AuthHandler) ChangePassword(rc *RequestContext) (*Result, error) {
	var req ChangePasswordRequest
	if err := h.bind(rc, &req); err != nil {
		return nil, err
	}
	if err := h.auth.ChangePassword(rc.Context(), rc.Account, req.OldPassword, req.NewPassword); err != nil {
		return nil, err
	}
	h.clearSession(rc)
	return OK("Password changed successfully. Please sign in again.", nil), nil
}

// SocialLogin signs in with an identity from an OAuth callback.
// POST /auth/social-login
func (h *AuthHandler) SocialLogin(rc *RequestContext) (*Result, error) {
	var req SocialLoginRequest
	if err := h.bind(rc, &req); err != nil {
		return nil, err
	}

	res, err := h.auth.SocialLogin(rc.Context(), services.SocialLoginInput{
		Email:        req.Email,
		UserName:     req.UserName,
		ProfileImage: req.ProfileImage,
		Provider:     models.Provider(req.Provider),
	}, rc.Client)
	if err != nil {
		return nil, err
	}

	h.setSession(rc, res.Tokens)
	return OK("Signed in successfully", AuthPayload{User: res.Account, Tokens: res.Tokens}), nil
}

// GoogleLogin signs in with a Google ID token.
// POST /auth/google-login
func (h *AuthHandler) GoogleLogin(rc *RequestContext) (*Result, error) {
	var req GoogleLoginRequest
	if err := h.bind(rc, &req); err != nil {
		return nil, err
	}

	res, err := h.auth.GoogleLogin(rc.Context(), req.IDToken, rc.Client)
	if err != nil {
		return nil, err
	}

	h.setSession(rc, res.Tokens)
	return OK("Signed in successfully", AuthPayload{User: res.Account, Tokens: res.Tokens}), nil
}

// CheckUserName reports whether a username can still be registered.
// POST /auth/check-username
func (h *AuthHandler) CheckUserName(rc *RequestContext) (*Result, error) {
	var req CheckUserNameRequest
	if err := h.bind(rc, &req); err != nil {
		return nil, err
	}
	available, err := h.auth.UserNameAvailable(rc.Context(), req.UserName)
	if err != nil {
		return nil, err
	}
	msg := "Username is available"
	if !available {
		msg = "Username is already taken"
	}
	return OK(msg, map[string]bool{"available": available}), nil
}

// LoginActivity lists the recent sign-in attempts of the signed-in account.
// GET /auth/login-activity
func (h *AuthHandler) LoginActivity(rc *RequestContext) (*Result, error) {
	activity, err := h.auth.LoginActivity(rc.Context(), rc.Account)
	if err != nil {
		return nil, err
	}
	return OK("Login activity fetched successfully", activity), nil
}
