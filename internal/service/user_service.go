package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vleeko/soundwave/internal/domain"
	"github.com/vleeko/soundwave/internal/repository"
	"github.com/vleeko/soundwave/internal/storage"
)

var (
	ErrWrongPassword = errors.New("current password is incorrect")
	ErrNoAvatar      = errors.New("no avatar set")
)

// recentlyPlayedCap bounds the history returned to clients; older plays
// stay in the store but are never served.
const recentlyPlayedCap = 20

type UserService struct {
	userRepo  repository.UserRepository
	trackRepo repository.TrackRepository
	files     storage.FileStore
}

func NewUserService(userRepo repository.UserRepository, trackRepo repository.TrackRepository, files storage.FileStore) *UserService {
	return &UserService{
		userRepo:  userRepo,
		trackRepo: trackRepo,
		files:     files,
	}
}

type ProfileResponse struct {
	User  *domain.User     `json:"user"`
	Stats domain.UserStats `json:"stats"`
}

type UpdateProfileInput struct {
	FirstName      *string  `json:"first_name"`
	LastName       *string  `json:"last_name"`
	Bio            *string  `json:"bio"`
	FavoriteGenres []string `json:"favorite_genres"`
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	_, trackCount, err := s.trackRepo.ListByUploader(ctx, userID, 1, 1)
	if err != nil {
		return nil, err
	}
	_, likedCount, err := s.trackRepo.ListLikedBy(ctx, userID, 1, 1)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		User:  user,
		Stats: domain.UserStats{TrackCount: trackCount, LikedCount: likedCount},
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.FirstName != nil {
		user.Profile.FirstName = input.FirstName
	}
	if input.LastName != nil {
		user.Profile.LastName = input.LastName
	}
	if input.Bio != nil {
		user.Profile.Bio = input.Bio
	}
	if input.FavoriteGenres != nil {
		user.Preferences.FavoriteGenres = input.FavoriteGenres
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

func (s *UserService) UploadAvatar(ctx context.Context, userID uuid.UUID, r io.Reader, filename string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	stored, err := s.files.Save(ctx, r, storage.KindImage, filename)
	if err != nil {
		return "", fmt.Errorf("storing avatar: %w", err)
	}

	if user.Profile.AvatarURL != nil {
		if err := s.files.Remove(ctx, *user.Profile.AvatarURL); err != nil {
			slog.Warn("removing old avatar", "user_id", userID, "error", err)
		}
	}

	user.Profile.AvatarURL = &stored.URL
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return "", fmt.Errorf("saving avatar reference: %w", err)
	}
	return stored.URL, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Profile.AvatarURL == nil {
		return ErrNoAvatar
	}

	if err := s.files.Remove(ctx, *user.Profile.AvatarURL); err != nil {
		slog.Warn("removing avatar file", "user_id", userID, "error", err)
	}

	user.Profile.AvatarURL = nil
	return s.userRepo.UpdateProfile(ctx, user)
}

func (s *UserService) LikedTracks(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Track, domain.Pagination, error) {
	tracks, total, err := s.trackRepo.ListLikedBy(ctx, userID, page, limit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return tracks, domain.NewPagination(page, limit, total), nil
}

// RecentlyPlayed returns the listening history most-recent-first, capped
// at 20 entries.
func (s *UserService) RecentlyPlayed(ctx context.Context, userID uuid.UUID) ([]domain.Track, error) {
	return s.userRepo.ListRecentlyPlayed(ctx, userID, recentlyPlayedCap)
}

// ChangePassword verifies the current password before recomputing the
// stored hash from the new one.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !verifyPassword(current, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, hash)
}

// DeleteAccount removes the user, everything they uploaded and the files
// behind it. Row cascades handle likes, history and playlists.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	tracks, err := s.trackRepo.AllByUploader(ctx, userID)
	if err != nil {
		return err
	}
	for _, t := range tracks {
		s.removeTrackFiles(ctx, &t)
	}

	if user.Profile.AvatarURL != nil {
		if err := s.files.Remove(ctx, *user.Profile.AvatarURL); err != nil {
			slog.Warn("removing avatar file", "user_id", userID, "error", err)
		}
	}

	return s.userRepo.Delete(ctx, userID)
}

func (s *UserService) removeTrackFiles(ctx context.Context, t *domain.Track) {
	if err := s.files.Remove(ctx, t.FilePath); err != nil {
		slog.Warn("removing track file", "track_id", t.ID, "error", err)
	}
	if t.CoverImage != nil {
		if err := s.files.Remove(ctx, *t.CoverImage); err != nil {
			slog.Warn("removing cover file", "track_id", t.ID, "error", err)
		}
	}
}

// ---- admin operations ----

func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]domain.User, domain.Pagination, error) {
	users, total, err := s.userRepo.List(ctx, page, limit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return users, domain.NewPagination(page, limit, total), nil
}

type AdminUpdateUserInput struct {
	Role       *domain.Role `json:"role"`
	IsVerified *bool        `json:"is_verified"`
}

func (s *UserService) AdminUpdateUser(ctx context.Context, userID uuid.UUID, input AdminUpdateUserInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Role != nil {
		if *input.Role != domain.RoleUser && *input.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("unknown role %q", *input.Role)
		}
		if err := s.userRepo.SetRole(ctx, userID, *input.Role); err != nil {
			return nil, err
		}
		user.Role = *input.Role
	}

	// Admin verification skips the OTP flow entirely; the transition is
	// still one way.
	if input.IsVerified != nil && *input.IsVerified && !user.IsVerified {
		if err := s.userRepo.MarkVerified(ctx, userID); err != nil {
			return nil, err
		}
		user.IsVerified = true
		user.OTPCode = nil
		user.OTPExpiresAt = nil
	}

	user.UpdatedAt = time.Now()
	return user, nil
}

func (s *UserService) AdminDeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.DeleteAccount(ctx, userID)
}
