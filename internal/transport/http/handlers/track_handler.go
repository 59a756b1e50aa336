package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/vleeko/soundwave/internal/domain"
	"github.com/vleeko/soundwave/internal/service"
	"github.com/vleeko/soundwave/internal/transport/http/middleware"
	"github.com/vleeko/soundwave/pkg/validator"
)

const (
	maxAudioUpload = 50 << 20 // 50 MiB
	maxImageUpload = 5 << 20  // 5 MiB
)

type TrackHandler struct {
	trackService *service.TrackService
}

func NewTrackHandler(trackService *service.TrackService) *TrackHandler {
	return &TrackHandler{trackService: trackService}
}

func (h *TrackHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := domain.TrackFilter{
		Search: r.URL.Query().Get("search"),
		Genre:  r.URL.Query().Get("genre"),
		Artist: r.URL.Query().Get("artist"),
		Page:   page,
		Limit:  limit,
	}

	tracks, pagination, err := h.trackService.List(r.Context(), filter)
	if err != nil {
		slog.Error("list tracks failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	if tracks == nil {
		tracks = []domain.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"music":      tracks,
		"pagination": pagination,
	})
}

func (h *TrackHandler) Get(w http.ResponseWriter, r *http.Request) {
	trackID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid track ID")
		return
	}

	var requester *uuid.UUID
	if identity, ok := middleware.IdentityFrom(r.Context()); ok {
		requester = &identity.UserID
	}

	track, err := h.trackService.Get(r.Context(), trackID, requester)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrackNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Track not found")
		case errors.Is(err, service.ErrPrivateTrack):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this track")
		default:
			slog.Error("get track failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": track})
}

func (h *TrackHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Invalid or oversized upload")
		return
	}

	file, header, err := r.FormFile("music")
	if err != nil {
		writeError(w, http.StatusBadRequest, "FILE_REQUIRED", "An audio file is required")
		return
	}
	defer file.Close()

	input := service.UploadTrackInput{
		Title:  r.FormValue("title"),
		Artist: r.FormValue("artist"),
		Album:  r.FormValue("album"),
		Genre:  r.FormValue("genre"),
		Tags:   r.FormValue("tags"),
	}

	if errs := validator.ValidateTrack(input.Title, input.Artist); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	track, err := h.trackService.Upload(r.Context(), identity.UserID, input, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		slog.Error("upload track failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Track uploaded successfully",
		"data":    track,
	})
}

func (h *TrackHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	trackID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid track ID")
		return
	}

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

	coverURL, err := h.trackService.UploadCover(r.Context(), identity.UserID, identity.Role == domain.RoleAdmin, trackID, file, header.Filename)
	if err != nil {
		h.writeTrackError(w, err, "upload cover")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Cover uploaded successfully",
		"data":    map[string]string{"cover_image": coverURL},
	})
}

func (h *TrackHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	trackID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid track ID")
		return
	}

	var input service.UpdateTrackInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	track, err := h.trackService.Update(r.Context(), identity.UserID, identity.Role == domain.RoleAdmin, trackID, input)
	if err != nil {
		h.writeTrackError(w, err, "update track")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Track updated",
		"data":    track,
	})
}

func (h *TrackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	trackID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid track ID")
		return
	}

	if err := h.trackService.Delete(r.Context(), identity.UserID, identity.Role == domain.RoleAdmin, trackID); err != nil {
		h.writeTrackError(w, err, "delete track")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Track deleted"})
}

func (h *TrackHandler) Like(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	trackID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid track ID")
		return
	}

	likeCount, err := h.trackService.Like(r.Context(), trackID, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrackNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Track not found")
		case errors.Is(err, service.ErrAlreadyLiked):
			writeError(w, http.StatusBadRequest, "ALREADY_LIKED", "You already liked this track")
		default:
			slog.Error("like track failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Track liked",
		"data":    map[string]int{"like_count": likeCount},
	})
}

func (h *TrackHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	trackID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid track ID")
		return
	}

	likeCount, err := h.trackService.Unlike(r.Context(), trackID, identity.UserID)
	if err != nil {
		h.writeTrackError(w, err, "unlike track")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Like removed",
		"data":    map[string]int{"like_count": likeCount},
	})
}

func (h *TrackHandler) Play(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	trackID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid track ID")
		return
	}

	playCount, err := h.trackService.Play(r.Context(), trackID, identity.UserID)
	if err != nil {
		h.writeTrackError(w, err, "play track")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Track played",
		"data":    map[string]int64{"play_count": playCount},
	})
}

func (h *TrackHandler) MyTracks(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	page, limit := pageParams(r)

	tracks, pagination, err := h.trackService.MyTracks(r.Context(), identity.UserID, page, limit)
	if err != nil {
		slog.Error("list my tracks failed", "error", err)
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

func (h *TrackHandler) writeTrackError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrTrackNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Track not found")
	case errors.Is(err, service.ErrNotTrackOwner):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You cannot modify this track")
	default:
		slog.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
