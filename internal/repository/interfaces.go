package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vleeko/soundwave/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, page, limit int) ([]domain.User, int, error)
	SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetRole(ctx context.Context, id uuid.UUID, role domain.Role) error
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddRecentlyPlayed(ctx context.Context, userID, trackID uuid.UUID, playedAt time.Time) error
	ListRecentlyPlayed(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Track, error)
}

type TrackRepository interface {
	Create(ctx context.Context, track *domain.Track) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Track, error)
	List(ctx context.Context, filter domain.TrackFilter) ([]domain.Track, int, error)
	ListByUploader(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Track, int, error)
	AllByUploader(ctx context.Context, userID uuid.UUID) ([]domain.Track, error)
	ListLikedBy(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Track, int, error)
	Update(ctx context.Context, track *domain.Track) error
	SetCover(ctx context.Context, id uuid.UUID, coverImage string) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasLike(ctx context.Context, trackID, userID uuid.UUID) (bool, error)
	Like(ctx context.Context, trackID, userID uuid.UUID, at time.Time) error
	Unlike(ctx context.Context, trackID, userID uuid.UUID) error
	CountLikes(ctx context.Context, trackID uuid.UUID) (int, error)
	IncrementPlayCount(ctx context.Context, id uuid.UUID) (int64, error)
}

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *domain.Playlist) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Playlist, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Playlist, error)
	Update(ctx context.Context, playlist *domain.Playlist) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddTrack(ctx context.Context, playlistID, trackID uuid.UUID, at time.Time) error
	RemoveTrack(ctx context.Context, playlistID, trackID uuid.UUID) error
	ListTracks(ctx context.Context, playlistID uuid.UUID) ([]domain.Track, error)
	Follow(ctx context.Context, playlistID, userID uuid.UUID, at time.Time) error
	Unfollow(ctx context.Context, playlistID, userID uuid.UUID) error
}
