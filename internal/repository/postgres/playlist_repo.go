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

const playlistColumns = `p.id, p.name, p.description, p.owner_id, p.cover_image,
	p.is_public, p.tags, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM playlist_tracks pt WHERE pt.playlist_id = p.id),
	(SELECT COUNT(*) FROM playlist_followers pf WHERE pf.playlist_id = p.id)`

type PlaylistRepo struct {
	pool *pgxpool.Pool
}

func NewPlaylistRepo(pool *pgxpool.Pool) *PlaylistRepo {
	return &PlaylistRepo{pool: pool}
}

func (r *PlaylistRepo) Create(ctx context.Context, playlist *domain.Playlist) error {
	query := `
		INSERT INTO playlists (id, name, description, owner_id, cover_image, is_public, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		playlist.ID, playlist.Name, playlist.Description, playlist.OwnerID,
		playlist.CoverImage, playlist.IsPublic, playlist.Tags,
		playlist.CreatedAt, playlist.UpdatedAt,
	)
	return err
}

func (r *PlaylistRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists p WHERE p.id = $1`

	var p domain.Playlist
	err := r.pool.QueryRow(ctx, query, id).Scan(playlistFields(&p)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlaylistRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists p WHERE p.owner_id = $1 ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []domain.Playlist
	for rows.Next() {
		var p domain.Playlist
		if err := rows.Scan(playlistFields(&p)...); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

func (r *PlaylistRepo) Update(ctx context.Context, playlist *domain.Playlist) error {
	query := `
		UPDATE playlists
		SET name = $2, description = $3, cover_image = $4, is_public = $5, tags = $6, updated_at = $7
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query,
		playlist.ID, playlist.Name, playlist.Description, playlist.CoverImage,
		playlist.IsPublic, playlist.Tags, time.Now(),
	)
	return err
}

func (r *PlaylistRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	return err
}

func (r *PlaylistRepo) AddTrack(ctx context.Context, playlistID, trackID uuid.UUID, at time.Time) error {
	query := `
		INSERT INTO playlist_tracks (playlist_id, track_id, position, added_at)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_tracks WHERE playlist_id = $1),
			$3)
		ON CONFLICT (playlist_id, track_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, playlistID, trackID, at)
	return err
}

func (r *PlaylistRepo) RemoveTrack(ctx context.Context, playlistID, trackID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM playlist_tracks WHERE playlist_id = $1 AND track_id = $2`,
		playlistID, trackID,
	)
	return err
}

func (r *PlaylistRepo) ListTracks(ctx context.Context, playlistID uuid.UUID) ([]domain.Track, error) {
	query := `
		SELECT ` + trackColumns + `
		FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		JOIN users u ON u.id = t.uploaded_by
		WHERE pt.playlist_id = $1
		ORDER BY pt.position`

	rows, err := r.pool.Query(ctx, query, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTracks(rows)
}

func (r *PlaylistRepo) Follow(ctx context.Context, playlistID, userID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO playlist_followers (playlist_id, user_id, followed_at) VALUES ($1, $2, $3)
		 ON CONFLICT (playlist_id, user_id) DO NOTHING`,
		playlistID, userID, at,
	)
	return err
}

func (r *PlaylistRepo) Unfollow(ctx context.Context, playlistID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM playlist_followers WHERE playlist_id = $1 AND user_id = $2`,
		playlistID, userID,
	)
	return err
}

func playlistFields(p *domain.Playlist) []any {
	return []any{
		&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CoverImage,
		&p.IsPublic, &p.Tags, &p.CreatedAt, &p.UpdatedAt,
		&p.TrackCount, &p.FollowerCount,
	}
}
