package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vleeko/soundwave/internal/domain"
	"github.com/vleeko/soundwave/internal/repository"
	"github.com/vleeko/soundwave/internal/storage"
)

var (
	ErrTrackNotFound = errors.New("track not found")
	ErrNotTrackOwner = errors.New("only the uploader can modify this track")
	ErrPrivateTrack  = errors.New("track is private")
	ErrAlreadyLiked  = errors.New("track already liked")
)

type TrackService struct {
	trackRepo repository.TrackRepository
	userRepo  repository.UserRepository
	files     storage.FileStore
}

func NewTrackService(trackRepo repository.TrackRepository, userRepo repository.UserRepository, files storage.FileStore) *TrackService {
	return &TrackService{
		trackRepo: trackRepo,
		userRepo:  userRepo,
		files:     files,
	}
}

type UploadTrackInput struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Tags   string // comma separated
}

type UpdateTrackInput struct {
	Title    *string `json:"title"`
	Artist   *string `json:"artist"`
	Album    *string `json:"album"`
	Genre    *string `json:"genre"`
	Tags     *string `json:"tags"`
	IsPublic *bool   `json:"is_public"`
}

func (s *TrackService) List(ctx context.Context, filter domain.TrackFilter) ([]domain.Track, domain.Pagination, error) {
	tracks, total, err := s.trackRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return tracks, domain.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns a track if it is public or the requester uploaded it.
// requester is nil for anonymous callers.
func (s *TrackService) Get(ctx context.Context, id uuid.UUID, requester *uuid.UUID) (*domain.Track, error) {
	track, err := s.trackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, ErrTrackNotFound
	}
	if !track.IsPublic && (requester == nil || *requester != track.UploadedBy) {
		return nil, ErrPrivateTrack
	}
	return track, nil
}

// Upload stores the audio file first, then the metadata row; the file is
// removed again if the row cannot be written.
func (s *TrackService) Upload(ctx context.Context, userID uuid.UUID, input UploadTrackInput, file io.Reader, filename, mimeType string) (*domain.Track, error) {
	stored, err := s.files.Save(ctx, file, storage.KindMusic, filename)
	if err != nil {
		return nil, fmt.Errorf("storing track file: %w", err)
	}

	now := time.Now()
	track := &domain.Track{
		ID:         uuid.New(),
		Title:      strings.TrimSpace(input.Title),
		Artist:     strings.TrimSpace(input.Artist),
		Album:      optional(input.Album),
		Genre:      optional(input.Genre),
		FilePath:   stored.URL,
		FileSize:   stored.Size,
		MimeType:   mimeType,
		UploadedBy: userID,
		IsPublic:   true,
		Tags:       splitTags(input.Tags),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.trackRepo.Create(ctx, track); err != nil {
		if rerr := s.files.Remove(ctx, stored.URL); rerr != nil {
			slog.Warn("removing orphaned upload", "url", stored.URL, "error", rerr)
		}
		return nil, fmt.Errorf("creating track: %w", err)
	}

	if user, err := s.userRepo.GetByID(ctx, userID); err == nil && user != nil {
		track.UploaderUsername = user.Username
	}
	return track, nil
}

func (s *TrackService) UploadCover(ctx context.Context, userID uuid.UUID, isAdmin bool, trackID uuid.UUID, file io.Reader, filename string) (string, error) {
	track, err := s.ownedTrack(ctx, userID, isAdmin, trackID)
	if err != nil {
		return "", err
	}

	stored, err := s.files.Save(ctx, file, storage.KindImage, filename)
	if err != nil {
		return "", fmt.Errorf("storing cover: %w", err)
	}

	if track.CoverImage != nil {
		if err := s.files.Remove(ctx, *track.CoverImage); err != nil {
			slog.Warn("removing old cover", "track_id", trackID, "error", err)
		}
	}

	if err := s.trackRepo.SetCover(ctx, trackID, stored.URL); err != nil {
		return "", fmt.Errorf("saving cover reference: %w", err)
	}
	return stored.URL, nil
}

func (s *TrackService) Update(ctx context.Context, userID uuid.UUID, isAdmin bool, trackID uuid.UUID, input UpdateTrackInput) (*domain.Track, error) {
	track, err := s.ownedTrack(ctx, userID, isAdmin, trackID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		track.Title = strings.TrimSpace(*input.Title)
	}
	if input.Artist != nil {
		track.Artist = strings.TrimSpace(*input.Artist)
	}
	if input.Album != nil {
		track.Album = optional(*input.Album)
	}
	if input.Genre != nil {
		track.Genre = optional(*input.Genre)
	}
	if input.IsPublic != nil {
		track.IsPublic = *input.IsPublic
	}
	if input.Tags != nil {
		track.Tags = splitTags(*input.Tags)
	}

	if err := s.trackRepo.Update(ctx, track); err != nil {
		return nil, fmt.Errorf("updating track: %w", err)
	}
	return track, nil
}

func (s *TrackService) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, trackID uuid.UUID) error {
	track, err := s.ownedTrack(ctx, userID, isAdmin, trackID)
	if err != nil {
		return err
	}

	if err := s.files.Remove(ctx, track.FilePath); err != nil {
		slog.Warn("removing track file", "track_id", trackID, "error", err)
	}
	if track.CoverImage != nil {
		if err := s.files.Remove(ctx, *track.CoverImage); err != nil {
			slog.Warn("removing cover file", "track_id", trackID, "error", err)
		}
	}

	return s.trackRepo.Delete(ctx, trackID)
}

// Like rejects duplicate likes rather than silently ignoring them.
func (s *TrackService) Like(ctx context.Context, trackID, userID uuid.UUID) (int, error) {
	track, err := s.trackRepo.GetByID(ctx, trackID)
	if err != nil {
		return 0, err
	}
	if track == nil {
		return 0, ErrTrackNotFound
	}

	liked, err := s.trackRepo.HasLike(ctx, trackID, userID)
	if err != nil {
		return 0, err
	}
	if liked {
		return 0, ErrAlreadyLiked
	}

	if err := s.trackRepo.Like(ctx, trackID, userID, time.Now()); err != nil {
		return 0, err
	}
	return s.trackRepo.CountLikes(ctx, trackID)
}

func (s *TrackService) Unlike(ctx context.Context, trackID, userID uuid.UUID) (int, error) {
	track, err := s.trackRepo.GetByID(ctx, trackID)
	if err != nil {
		return 0, err
	}
	if track == nil {
		return 0, ErrTrackNotFound
	}

	if err := s.trackRepo.Unlike(ctx, trackID, userID); err != nil {
		return 0, err
	}
	return s.trackRepo.CountLikes(ctx, trackID)
}

// Play bumps the play counter and records the track in the listener's
// history.
func (s *TrackService) Play(ctx context.Context, trackID, userID uuid.UUID) (int64, error) {
	track, err := s.trackRepo.GetByID(ctx, trackID)
	if err != nil {
		return 0, err
	}
	if track == nil {
		return 0, ErrTrackNotFound
	}

	count, err := s.trackRepo.IncrementPlayCount(ctx, trackID)
	if err != nil {
		return 0, err
	}

	if err := s.userRepo.AddRecentlyPlayed(ctx, userID, trackID, time.Now()); err != nil {
		slog.Warn("recording play history", "track_id", trackID, "user_id", userID, "error", err)
	}
	return count, nil
}

func (s *TrackService) MyTracks(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Track, domain.Pagination, error) {
	tracks, total, err := s.trackRepo.ListByUploader(ctx, userID, page, limit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return tracks, domain.NewPagination(page, limit, total), nil
}

func (s *TrackService) ownedTrack(ctx context.Context, userID uuid.UUID, isAdmin bool, trackID uuid.UUID) (*domain.Track, error) {
	track, err := s.trackRepo.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, ErrTrackNotFound
	}
	if track.UploadedBy != userID && !isAdmin {
		return nil, ErrNotTrackOwner
	}
	return track, nil
}

func splitTags(tags string) []string {
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
