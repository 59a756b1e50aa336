package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vleeko/soundwave/internal/domain"
)

const userColumns = `id, username, email, password_hash, is_verified, role,
	otp_code, otp_expires_at, first_name, last_name, avatar_url, bio,
	favorite_genres, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, is_verified, role,
			otp_code, otp_expires_at, first_name, last_name, avatar_url, bio,
			favorite_genres, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsVerified, user.Role,
		user.OTPCode, user.OTPExpiresAt, user.Profile.FirstName, user.Profile.LastName,
		user.Profile.AvatarURL, user.Profile.Bio, user.Preferences.FavoriteGenres,
		user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepo) List(ctx context.Context, page, limit int) ([]domain.User, int, error) {
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET otp_code = $2, otp_expires_at = $3, updated_at = now() WHERE id = $1`,
		id, code, expiresAt,
	)
	return err
}

// MarkVerified flips the account to verified and clears the passcode in a
// single statement so no reader ever sees one without the other.
func (r *UserRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET is_verified = TRUE, otp_code = NULL, otp_expires_at = NULL, updated_at = now() WHERE id = $1`,
		id,
	)
	return err
}

func (r *UserRepo) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1`,
		id, role,
	)
	return err
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, avatar_url = $4, bio = $5,
			favorite_genres = $6, updated_at = $7
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Profile.FirstName, user.Profile.LastName,
		user.Profile.AvatarURL, user.Profile.Bio,
		user.Preferences.FavoriteGenres, time.Now(),
	)
	return err
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash,
	)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *UserRepo) AddRecentlyPlayed(ctx context.Context, userID, trackID uuid.UUID, playedAt time.Time) error {
	query := `
		INSERT INTO recently_played (user_id, track_id, played_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, track_id) DO UPDATE SET played_at = EXCLUDED.played_at`

	_, err := r.pool.Exec(ctx, query, userID, trackID, playedAt)
	return err
}

func (r *UserRepo) ListRecentlyPlayed(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Track, error) {
	query := `
		SELECT ` + trackColumns + `
		FROM recently_played rp
		JOIN tracks t ON t.id = rp.track_id
		JOIN users u ON u.id = t.uploaded_by
		WHERE rp.user_id = $1
		ORDER BY rp.played_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTracks(rows)
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return scanUserRow(rows)
}

func scanUserRow(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsVerified, &u.Role,
		&u.OTPCode, &u.OTPExpiresAt, &u.Profile.FirstName, &u.Profile.LastName,
		&u.Profile.AvatarURL, &u.Profile.Bio, &u.Preferences.FavoriteGenres,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
