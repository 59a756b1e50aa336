package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vleeko/soundwave/internal/domain"
	"github.com/vleeko/soundwave/internal/service"
	"github.com/vleeko/soundwave/internal/transport/http/middleware"
	"github.com/vleeko/soundwave/pkg/validator"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	resp, err := h.userService.Profile(r.Context(), identity.UserID)
	if err != nil {
		h.writeUserError(w, err, "get profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateProfile(input.FirstName, input.LastName, input.Bio); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), identity.UserID, input)
	if err != nil {
		h.writeUserError(w, err, "update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"data":    user,
	})
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Invalid or oversized upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "FILE_REQUIRED", "An image file is required")
		return
	}
	defer file.Close()

	avatarURL, err := h.userService.UploadAvatar(r.Context(), identity.UserID, file, header.Filename)
	if err != nil {
		h.writeUserError(w, err, "upload avatar")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Avatar uploaded successfully",
		"data":    map[string]string{"avatar": avatarURL},
	})
}

func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	if err := h.userService.DeleteAvatar(r.Context(), identity.UserID); err != nil {
		if errors.Is(err, service.ErrNoAvatar) {
			writeError(w, http.StatusBadRequest, "NO_AVATAR", "You have no avatar set")
			return
		}
		h.writeUserError(w, err, "delete avatar")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Avatar deleted"})
}

func (h *UserHandler) LikedTracks(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	page, limit := pageParams(r)

	tracks, pagination, err := h.userService.LikedTracks(r.Context(), identity.UserID, page, limit)
	if err != nil {
		slog.Error("list liked tracks failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	if tracks == nil {
		tracks = []domain.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       tracks,
		"pagination": pagination,
	})
}

func (h *UserHandler) RecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	tracks, err := h.userService.RecentlyPlayed(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("list recently played failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	if tracks == nil {
		tracks = []domain.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": tracks})
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateChangePassword(input.CurrentPassword, input.NewPassword); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	if err := h.userService.ChangePassword(r.Context(), identity.UserID, input.CurrentPassword, input.NewPassword); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			writeError(w, http.StatusUnauthorized, "WRONG_PASSWORD", "Current password is incorrect")
			return
		}
		h.writeUserError(w, err, "change password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Password changed successfully"})
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	if err := h.userService.DeleteAccount(r.Context(), identity.UserID); err != nil {
		h.writeUserError(w, err, "delete account")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Account deleted"})
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	slog.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
}
