package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vleeko/soundwave/internal/domain"
	"github.com/vleeko/soundwave/internal/repository"
)

var (
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrNotPlaylistOwner = errors.New("only the playlist owner can perform this action")
	ErrPrivatePlaylist  = errors.New("playlist is private")
)

type PlaylistService struct {
	playlistRepo repository.PlaylistRepository
	trackRepo    repository.TrackRepository
}

func NewPlaylistService(playlistRepo repository.PlaylistRepository, trackRepo repository.TrackRepository) *PlaylistService {
	return &PlaylistService{
		playlistRepo: playlistRepo,
		trackRepo:    trackRepo,
	}
}

type CreatePlaylistInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	Tags        string `json:"tags"`
}

type UpdatePlaylistInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
	Tags        *string `json:"tags"`
}

type PlaylistWithTracks struct {
	*domain.Playlist
	Tracks []domain.Track `json:"tracks"`
}

func (s *PlaylistService) Create(ctx context.Context, ownerID uuid.UUID, input CreatePlaylistInput) (*domain.Playlist, error) {
	now := time.Now()
	playlist := &domain.Playlist{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: optional(input.Description),
		OwnerID:     ownerID,
		IsPublic:    input.IsPublic,
		Tags:        splitTags(input.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, fmt.Errorf("creating playlist: %w", err)
	}
	return playlist, nil
}

func (s *PlaylistService) Get(ctx context.Context, id uuid.UUID, requester *uuid.UUID) (*PlaylistWithTracks, error) {
	playlist, err := s.visiblePlaylist(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	tracks, err := s.playlistRepo.ListTracks(ctx, id)
	if err != nil {
		return nil, err
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return &PlaylistWithTracks{Playlist: playlist, Tracks: tracks}, nil
}

func (s *PlaylistService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]domain.Playlist, error) {
	return s.playlistRepo.ListByOwner(ctx, ownerID)
}

func (s *PlaylistService) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdatePlaylistInput) (*domain.Playlist, error) {
	playlist, err := s.ownedPlaylist(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		playlist.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		playlist.Description = optional(*input.Description)
	}
	if input.IsPublic != nil {
		playlist.IsPublic = *input.IsPublic
	}
	if input.Tags != nil {
		playlist.Tags = splitTags(*input.Tags)
	}

	if err := s.playlistRepo.Update(ctx, playlist); err != nil {
		return nil, fmt.Errorf("updating playlist: %w", err)
	}
	return playlist, nil
}

func (s *PlaylistService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.ownedPlaylist(ctx, ownerID, id); err != nil {
		return err
	}
	return s.playlistRepo.Delete(ctx, id)
}

// AddTrack requires the track to be visible to the playlist owner.
func (s *PlaylistService) AddTrack(ctx context.Context, ownerID, playlistID, trackID uuid.UUID) error {
	if _, err := s.ownedPlaylist(ctx, ownerID, playlistID); err != nil {
		return err
	}

	track, err := s.trackRepo.GetByID(ctx, trackID)
	if err != nil {
		return err
	}
	if track == nil {
		return ErrTrackNotFound
	}
	if !track.IsPublic && track.UploadedBy != ownerID {
		return ErrPrivateTrack
	}

	return s.playlistRepo.AddTrack(ctx, playlistID, trackID, time.Now())
}

func (s *PlaylistService) RemoveTrack(ctx context.Context, ownerID, playlistID, trackID uuid.UUID) error {
	if _, err := s.ownedPlaylist(ctx, ownerID, playlistID); err != nil {
		return err
	}
	return s.playlistRepo.RemoveTrack(ctx, playlistID, trackID)
}

func (s *PlaylistService) Follow(ctx context.Context, userID, playlistID uuid.UUID) error {
	if _, err := s.visiblePlaylist(ctx, playlistID, &userID); err != nil {
		return err
	}
	return s.playlistRepo.Follow(ctx, playlistID, userID, time.Now())
}

func (s *PlaylistService) Unfollow(ctx context.Context, userID, playlistID uuid.UUID) error {
	return s.playlistRepo.Unfollow(ctx, playlistID, userID)
}

func (s *PlaylistService) ownedPlaylist(ctx context.Context, ownerID, id uuid.UUID) (*domain.Playlist, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, ErrPlaylistNotFound
	}
	if playlist.OwnerID != ownerID {
		return nil, ErrNotPlaylistOwner
	}
	return playlist, nil
}

func (s *PlaylistService) visiblePlaylist(ctx context.Context, id uuid.UUID, requester *uuid.UUID) (*domain.Playlist, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, ErrPlaylistNotFound
	}
	if !playlist.IsPublic && (requester == nil || *requester != playlist.OwnerID) {
		return nil, ErrPrivatePlaylist
	}
	return playlist, nil
}
