package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vleeko/soundwave/internal/domain"
)

const trackColumns = `t.id, t.title, t.artist, t.album, t.genre, t.duration,
	t.file_path, t.file_size, t.mime_type, t.cover_image, t.uploaded_by,
	t.is_public, t.play_count, t.tags, t.created_at, t.updated_at,
	u.username,
	(SELECT COUNT(*) FROM track_likes tl WHERE tl.track_id = t.id)`

type TrackRepo struct {
	pool *pgxpool.Pool
}

func NewTrackRepo(pool *pgxpool.Pool) *TrackRepo {
	return &TrackRepo{pool: pool}
}

func (r *TrackRepo) Create(ctx context.Context, track *domain.Track) error {
	query := `
		INSERT INTO tracks (id, title, artist, album, genre, duration, file_path,
			file_size, mime_type, cover_image, uploaded_by, is_public, play_count,
			tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.pool.Exec(ctx, query,
		track.ID, track.Title, track.Artist, track.Album, track.Genre, track.Duration,
		track.FilePath, track.FileSize, track.MimeType, track.CoverImage, track.UploadedBy,
		track.IsPublic, track.PlayCount, track.Tags, track.CreatedAt, track.UpdatedAt,
	)
	return err
}

func (r *TrackRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Track, error) {
	query := `
		SELECT ` + trackColumns + `
		FROM tracks t
		JOIN users u ON u.id = t.uploaded_by
		WHERE t.id = $1`

	var t domain.Track
	err := r.pool.QueryRow(ctx, query, id).Scan(trackFields(&t)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TrackRepo) List(ctx context.Context, filter domain.TrackFilter) ([]domain.Track, int, error) {
	where := `t.is_public = TRUE`
	args := []any{}
	n := 0

	if filter.Search != "" {
		n++
		where += fmt.Sprintf(` AND (t.title ILIKE $%d OR t.artist ILIKE $%d OR t.album ILIKE $%d)`, n, n, n)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Genre != "" {
		n++
		where += fmt.Sprintf(` AND t.genre ILIKE $%d`, n)
		args = append(args, "%"+filter.Genre+"%")
	}
	if filter.Artist != "" {
		n++
		where += fmt.Sprintf(` AND t.artist ILIKE $%d`, n)
		args = append(args, "%"+filter.Artist+"%")
	}

	countQuery := `SELECT COUNT(*) FROM tracks t WHERE ` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT `+trackColumns+`
		FROM tracks t
		JOIN users u ON u.id = t.uploaded_by
		WHERE `+where+`
		ORDER BY t.created_at DESC
		OFFSET $%d LIMIT $%d`, n+1, n+2)
	args = append(args, offset, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tracks, err := collectTracks(rows)
	if err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}

func (r *TrackRepo) ListByUploader(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Track, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tracks WHERE uploaded_by = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + trackColumns + `
		FROM tracks t
		JOIN users u ON u.id = t.uploaded_by
		WHERE t.uploaded_by = $1
		ORDER BY t.created_at DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tracks, err := collectTracks(rows)
	if err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}

func (r *TrackRepo) AllByUploader(ctx context.Context, userID uuid.UUID) ([]domain.Track, error) {
	query := `
		SELECT ` + trackColumns + `
		FROM tracks t
		JOIN users u ON u.id = t.uploaded_by
		WHERE t.uploaded_by = $1
		ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTracks(rows)
}

func (r *TrackRepo) ListLikedBy(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Track, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM track_likes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + trackColumns + `
		FROM track_likes tl2
		JOIN tracks t ON t.id = tl2.track_id
		JOIN users u ON u.id = t.uploaded_by
		WHERE tl2.user_id = $1
		ORDER BY tl2.created_at DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tracks, err := collectTracks(rows)
	if err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}

func (r *TrackRepo) Update(ctx context.Context, track *domain.Track) error {
	query := `
		UPDATE tracks
		SET title = $2, artist = $3, album = $4, genre = $5, is_public = $6,
			tags = $7, updated_at = $8
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query,
		track.ID, track.Title, track.Artist, track.Album, track.Genre,
		track.IsPublic, track.Tags, time.Now(),
	)
	return err
}

func (r *TrackRepo) SetCover(ctx context.Context, id uuid.UUID, coverImage string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tracks SET cover_image = $2, updated_at = now() WHERE id = $1`,
		id, coverImage,
	)
	return err
}

func (r *TrackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tracks WHERE id = $1`, id)
	return err
}

func (r *TrackRepo) HasLike(ctx context.Context, trackID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM track_likes WHERE track_id = $1 AND user_id = $2)`,
		trackID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *TrackRepo) Like(ctx context.Context, trackID, userID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO track_likes (track_id, user_id, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (track_id, user_id) DO NOTHING`,
		trackID, userID, at,
	)
	return err
}

func (r *TrackRepo) Unlike(ctx context.Context, trackID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM track_likes WHERE track_id = $1 AND user_id = $2`,
		trackID, userID,
	)
	return err
}

func (r *TrackRepo) CountLikes(ctx context.Context, trackID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM track_likes WHERE track_id = $1`, trackID).Scan(&count)
	return count, err
}

func (r *TrackRepo) IncrementPlayCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`UPDATE tracks SET play_count = play_count + 1 WHERE id = $1 RETURNING play_count`,
		id,
	).Scan(&count)
	return count, err
}

func trackFields(t *domain.Track) []any {
	return []any{
		&t.ID, &t.Title, &t.Artist, &t.Album, &t.Genre, &t.Duration,
		&t.FilePath, &t.FileSize, &t.MimeType, &t.CoverImage, &t.UploadedBy,
		&t.IsPublic, &t.PlayCount, &t.Tags, &t.CreatedAt, &t.UpdatedAt,
		&t.UploaderUsername, &t.LikeCount,
	}
}

func collectTracks(rows pgx.Rows) ([]domain.Track, error) {
	var tracks []domain.Track
	for rows.Next() {
		var t domain.Track
		if err := rows.Scan(trackFields(&t)...); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
