package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/port/http/middleware"
	"github.com/MaheshMoholkar/ignite-lms/internal/service"
)

type UserHandler struct {
	users   service.UserService
	cookies *CookieWriter
	log     logger.Logger
}

func NewUserHandler(users service.UserService, cookies *CookieWriter, log logger.Logger) *UserHandler {
	return &UserHandler{users: users, cookies: cookies, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register accepts JSON, or multipart/form-data when an avatar is attached.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	var avatar *service.AvatarUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, h.log, service.ErrValidation)
			return
		}
		req.Name = r.FormValue("name")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")

		up, err := formFile(r, "avatar")
		if err != nil {
			writeError(w, h.log, service.ErrValidation)
			return
		}
		if up != nil {
			avatar = &service.AvatarUpload{FileName: up.FileName, ContentType: up.ContentType, Data: up.Data}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}

	token, err := h.users.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   avatar,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.cookies.setActivationCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":         "check your email for the activation code",
		"activationToken": token,
	})
}

type activateRequest struct {
	ActivationToken string `json:"activationToken"`
	ActivationCode  string `json:"activationCode"`
}

// Activate verifies the activation code. The token comes from the request
// body or, failing that, the activation cookie set at registration.
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}
	if req.ActivationToken == "" {
		if cookie, err := r.Cookie(activationTokenCookie); err == nil {
			req.ActivationToken = cookie.Value
		}
	}

	if err := h.users.Activate(r.Context(), req.ActivationToken, req.ActivationCode); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.cookies.clearActivationCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "account activated"})
}

type resendActivationRequest struct {
	Email string `json:"email"`
}

func (h *UserHandler) ResendActivation(w http.ResponseWriter, r *http.Request) {
	var req resendActivationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}

	token, err := h.users.ResendActivation(r.Context(), req.Email)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.cookies.setActivationCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":         "activation code resent",
		"activationToken": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}

	user, pair, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.cookies.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, userResponse(user))
}

type socialAuthRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func (h *UserHandler) SocialAuth(w http.ResponseWriter, r *http.Request) {
	var req socialAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}

	user, pair, err := h.users.SocialAuth(r.Context(), req.Name, req.Email, req.Avatar)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.cookies.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, userResponse(user))
}

// Refresh rotates both tokens using the refresh cookie. This is the only
// endpoint that reads the refresh token.
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "refresh token missing"})
		return
	}

	user, pair, err := h.users.Refresh(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.cookies.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, userResponse(user))
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	if err := h.users.Logout(r.Context(), user.ID.Hex()); err != nil {
		h.log.Warnf("failed to drop session for %s: %v", user.ID.Hex(), err)
	}
	h.cookies.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	writeJSON(w, http.StatusOK, userResponse(user))
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	var input service.UpdateProfileInput
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, h.log, service.ErrValidation)
			return
		}
		input.Name = r.FormValue("name")
		input.Email = r.FormValue("email")

		up, err := formFile(r, "avatar")
		if err != nil {
			writeError(w, h.log, service.ErrValidation)
			return
		}
		if up != nil {
			input.Avatar = &service.AvatarUpload{FileName: up.FileName, ContentType: up.ContentType, Data: up.Data}
		}
	} else {
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.log, service.ErrValidation)
			return
		}
		input.Name = req.Name
		input.Email = req.Email
	}

	user, err := h.users.UpdateProfile(r.Context(), current.ID.Hex(), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(user))
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}

	if err := h.users.ChangePassword(r.Context(), user.ID.Hex(), req.OldPassword, req.NewPassword); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	out := make([]map[string]interface{}, len(users))
	for i, u := range users {
		out[i] = userResponse(u)
	}
	writeJSON(w, http.StatusOK, out)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}

	if err := h.users.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Role); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "role updated"})
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
