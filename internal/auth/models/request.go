package models

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"supaboard/internal/supabase"
	dErrors "supaboard/pkg/domain-errors"
	"supaboard/pkg/platform/validation"
)

type PasswordSignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *PasswordSignInRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *PasswordSignInRequest) Validate() error {
	fields := validation.FieldErrors{}
	fields.Email("email", r.Email)
	if r.Password == "" {
		fields.Add("password", "Required")
	}
	return fields.Err()
}

type OAuthSignInRequest struct {
	Provider string `json:"provider"`
}

func (r *OAuthSignInRequest) Normalize() {
	r.Provider = strings.ToLower(strings.TrimSpace(r.Provider))
}

func (r *OAuthSignInRequest) Validate() error {
	fields := validation.FieldErrors{}
	fields.Required("provider", r.Provider)
	return fields.Err()
}

type OtpSignInRequest struct {
	Email string `json:"email"`
}

func (r *OtpSignInRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *OtpSignInRequest) Validate() error {
	fields := validation.FieldErrors{}
	fields.Required("email", r.Email)
	return fields.Err()
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignUpRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *SignUpRequest) Validate() error {
	fields := validation.FieldErrors{}
	fields.Required("email", r.Email)
	if r.Password == "" {
		fields.Add("password", "Required")
	}
	return fields.Err()
}

type SSOSignInRequest struct {
	Domain     string `json:"domain"`
	ProviderID string `json:"provider_id"`
}

func (r *SSOSignInRequest) Normalize() {
	r.Domain = strings.ToLower(strings.TrimSpace(r.Domain))
	r.ProviderID = strings.TrimSpace(r.ProviderID)
}

func (r *SSOSignInRequest) Validate() error {
	fields := validation.FieldErrors{}
	switch {
	case r.Domain == "" && r.ProviderID == "":
		fields.Add("domain", "Either domain or provider_id is required")
	case r.Domain != "" && !govalidator.IsDNSName(r.Domain):
		fields.Add("domain", "Invalid domain")
	case r.ProviderID != "" && !govalidator.IsUUID(r.ProviderID):
		fields.Add("provider_id", "Invalid provider id")
	}
	return fields.Err()
}

type IDTokenSignInRequest struct {
	Provider    string `json:"provider"`
	Token       string `json:"token"`
	Nonce       string `json:"nonce"`
	AccessToken string `json:"access_token"`
}

func (r *IDTokenSignInRequest) Normalize() {
	r.Provider = strings.ToLower(strings.TrimSpace(r.Provider))
	r.Token = strings.TrimSpace(r.Token)
}

func (r *IDTokenSignInRequest) Validate() error {
	fields := validation.FieldErrors{}
	fields.Required("provider", r.Provider)
	fields.Required("token", r.Token)
	return fields.Err()
}

type SetSessionRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (r *SetSessionRequest) Normalize() {
	r.AccessToken = strings.TrimSpace(r.AccessToken)
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
}

func (r *SetSessionRequest) Validate() error {
	fields := validation.FieldErrors{}
	fields.Required("access_token", r.AccessToken)
	fields.Required("refresh_token", r.RefreshToken)
	return fields.Err()
}

// CallbackRequest is what the auth service appends to the redirect URL.
type CallbackRequest struct {
	Code             string
	TokenHash        string
	Type             string
	Error            string
	ErrorDescription string
}

func (r *CallbackRequest) Validate() error {
	if r.Error != "" {
		msg := r.ErrorDescription
		if msg == "" {
			msg = r.Error
		}
		return dErrors.New(dErrors.CodeBadRequest, msg)
	}
	if r.Code == "" && r.TokenHash == "" {
		return dErrors.New(dErrors.CodeBadRequest, "missing code or token_hash")
	}
	if r.TokenHash != "" && !govalidator.IsIn(r.Type, supabase.VerifyTypes...) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid verification type")
	}
	return nil
}
