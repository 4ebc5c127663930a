// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/objectstore"
	"github.com/danielhkuo/ballotbox/realtime"
	"github.com/danielhkuo/ballotbox/store"
)

// SupportedLanguages are the interface languages a profile may pick.
// The first entry is the default.
var SupportedLanguages = []language.Tag{language.English, language.French, language.Spanish}

var languageMatcher = language.NewMatcher(SupportedLanguages)

type AccountHandler struct {
	store    *store.Store
	cfg      cliparse.Config
	avatars  *objectstore.Avatars
	activity *ActivityRecorder
	hub      *realtime.Hub
}

func NewAccountHandler(st *store.Store, cfg cliparse.Config, avatars *objectstore.Avatars, activity *ActivityRecorder, hub *realtime.Hub) *AccountHandler {
	return &AccountHandler{store: st, cfg: cfg, avatars: avatars, activity: activity, hub: hub}
}

// Register handles POST /auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	profile, status, msg := newProfile(req.Email, req.Password, req.FullName, req.RegistrationID, models.RoleVoter, r)
	if status != 0 {
		middleware.ErrorResponse(w, status, msg)
		return
	}

	if err := h.store.CreateProfile(r.Context(), profile); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			middleware.ErrorResponse(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		middleware.StoreError(w, err, "Failed to create account")
		return
	}

	slog.Info("voter registered", "user_id", profile.ID)
	h.activity.Record(r.Context(), r, profile.ID, models.ActionRegister, "Registered "+profile.Email)
	h.hub.Publish(realtime.ProfileChange(realtime.Insert, profile))

	h.issueSession(w, profile, http.StatusCreated)
}

// Login handles POST /auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	profile, err := h.store.GetProfileByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		middleware.StoreError(w, err, "Failed to sign in")
		return
	}

	if err := auth.CheckPassword(profile.PasswordHash, req.Password); err != nil {
		slog.Info("login rejected", "user_id", profile.ID)
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if !profile.Active {
		middleware.ErrorResponse(w, http.StatusForbidden, "Account is deactivated")
		return
	}

	h.activity.Record(r.Context(), r, profile.ID, models.ActionLogin, "Signed in")
	h.issueSession(w, profile, http.StatusOK)
}

func (h *AccountHandler) issueSession(w http.ResponseWriter, p models.Profile, status int) {
	token, expires, err := auth.IssueToken(p.ID, p.Role, h.cfg.JWTSecret, h.cfg.SessionTTL, time.Now())
	if err != nil {
		slog.Error("failed to issue session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}
	middleware.JSONResponse(w, status, models.SessionResponse{Token: token, ExpiresAt: expires, Profile: p})
}

// Me handles GET /me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, _ := middleware.ProfileFrom(r.Context())
	middleware.JSONResponse(w, http.StatusOK, profile)
}

// UpdateMe handles PATCH /me
func (h *AccountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	profile, _ := middleware.ProfileFrom(r.Context())

	var req models.UpdateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "full_name cannot be empty")
			return
		}
		profile.FullName = name
	}
	if req.Language != nil {
		tag, ok := ParseLanguage(*req.Language)
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unsupported language")
			return
		}
		profile.Language = tag
	}

	if err := h.store.UpdateProfile(r.Context(), profile); err != nil {
		middleware.StoreError(w, err, "Failed to update profile")
		return
	}

	h.activity.Record(r.Context(), r, profile.ID, models.ActionProfileUpdated, "Updated profile")
	h.hub.Publish(realtime.ProfileChange(realtime.Update, profile))
	middleware.JSONResponse(w, http.StatusOK, profile)
}

// UploadAvatar handles POST /me/avatar. The body is the raw image, or a
// multipart form with an "avatar" file field.
func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	profile, _ := middleware.ProfileFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.avatars.MaxBytes()+64<<10)
	body := r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("avatar")
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "avatar file is required")
			return
		}
		defer file.Close()
		body = file
	}

	url, err := h.avatars.Upload(r.Context(), profile.ID, body)
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, objectstore.ErrTooLarge), errors.As(err, &maxErr):
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Image is too large")
		return
	case errors.Is(err, objectstore.ErrUnsupportedImage):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Image must be PNG, JPEG or GIF")
		return
	case err != nil:
		slog.Error("failed to store avatar", "user_id", profile.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store avatar")
		return
	}

	profile.AvatarURL = &url
	if err := h.store.UpdateProfile(r.Context(), profile); err != nil {
		middleware.StoreError(w, err, "Failed to update profile")
		return
	}

	h.activity.Record(r.Context(), r, profile.ID, models.ActionAvatarUploaded, "Uploaded avatar")
	h.hub.Publish(realtime.ProfileChange(realtime.Update, profile))
	middleware.JSONResponse(w, http.StatusOK, models.AvatarResponse{AvatarURL: url})
}

// ParseLanguage matches a requested language against SupportedLanguages and
// returns the canonical tag. Regional variants fold into their base
// language ("fr-CA" becomes "fr").
func ParseLanguage(s string) (string, bool) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return SupportedLanguages[idx].String(), true
}

// newProfile validates account fields and builds a profile with a hashed
// password. A non-zero status means the input was rejected with msg.
func newProfile(email, password, fullName, regID, role string, r *http.Request) (p models.Profile, status int, msg string) {
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)
	if email == "" || fullName == "" {
		return p, http.StatusBadRequest, "email and full_name are required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return p, http.StatusBadRequest, "Invalid email address"
	}

	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return p, http.StatusBadRequest, err.Error()
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		return p, http.StatusInternalServerError, "Failed to create account"
	}

	lang := SupportedLanguages[0].String()
	if r != nil {
		if tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil && len(tags) > 0 {
			_, idx, conf := languageMatcher.Match(tags...)
			if conf >= language.High {
				lang = SupportedLanguages[idx].String()
			}
		}
	}

	p = models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		Language:     lang,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if regID = strings.TrimSpace(regID); regID != "" {
		p.RegistrationID = &regID
	}
	return p, 0, ""
}
