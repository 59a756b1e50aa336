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

type PlaylistHandler struct {
	playlistService *service.PlaylistService
}

func NewPlaylistHandler(playlistService *service.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{playlistService: playlistService}
}

func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var input service.CreatePlaylistInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidatePlaylist(input.Name); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	playlist, err := h.playlistService.Create(r.Context(), identity.UserID, input)
	if err != nil {
		slog.Error("create playlist failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Playlist created",
		"data":    playlist,
	})
}

func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	playlistID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid playlist ID")
		return
	}

	var requester *uuid.UUID
	if identity, ok := middleware.IdentityFrom(r.Context()); ok {
		requester = &identity.UserID
	}

	playlist, err := h.playlistService.Get(r.Context(), playlistID, requester)
	if err != nil {
		h.writePlaylistError(w, err, "get playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": playlist})
}

func (h *PlaylistHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	playlists, err := h.playlistService.ListMine(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("list playlists failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	if playlists == nil {
		playlists = []domain.Playlist{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": playlists})
}

func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	playlistID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid playlist ID")
		return
	}

	var input service.UpdatePlaylistInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if input.Name != nil {
		if errs := validator.ValidatePlaylist(*input.Name); errs.HasErrors() {
			writeValidationErrors(w, errs)
			return
		}
	}

	playlist, err := h.playlistService.Update(r.Context(), identity.UserID, playlistID, input)
	if err != nil {
		h.writePlaylistError(w, err, "update playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Playlist updated",
		"data":    playlist,
	})
}

func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	playlistID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid playlist ID")
		return
	}

	if err := h.playlistService.Delete(r.Context(), identity.UserID, playlistID); err != nil {
		h.writePlaylistError(w, err, "delete playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Playlist deleted"})
}

func (h *PlaylistHandler) AddTrack(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	playlistID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid playlist ID")
		return
	}
	trackID, err := uuid.Parse(r.PathValue("trackId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid track ID")
		return
	}

	if err := h.playlistService.AddTrack(r.Context(), identity.UserID, playlistID, trackID); err != nil {
		h.writePlaylistError(w, err, "add track to playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Track added to playlist"})
}

func (h *PlaylistHandler) RemoveTrack(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	playlistID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid playlist ID")
		return
	}
	trackID, err := uuid.Parse(r.PathValue("trackId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid track ID")
		return
	}

	if err := h.playlistService.RemoveTrack(r.Context(), identity.UserID, playlistID, trackID); err != nil {
		h.writePlaylistError(w, err, "remove track from playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Track removed from playlist"})
}

func (h *PlaylistHandler) Follow(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	playlistID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid playlist ID")
		return
	}

	if err := h.playlistService.Follow(r.Context(), identity.UserID, playlistID); err != nil {
		h.writePlaylistError(w, err, "follow playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Playlist followed"})
}

func (h *PlaylistHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	playlistID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid playlist ID")
		return
	}

	if err := h.playlistService.Unfollow(r.Context(), identity.UserID, playlistID); err != nil {
		h.writePlaylistError(w, err, "unfollow playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Playlist unfollowed"})
}

func (h *PlaylistHandler) writePlaylistError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrPlaylistNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Playlist not found")
	case errors.Is(err, service.ErrTrackNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Track not found")
	case errors.Is(err, service.ErrNotPlaylistOwner):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You cannot modify this playlist")
	case errors.Is(err, service.ErrPrivatePlaylist), errors.Is(err, service.ErrPrivateTrack):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource")
	default:
		slog.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
