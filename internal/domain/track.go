package domain

import (
	"time"

	"github.com/google/uuid"
)

type Track struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      *string   `json:"album,omitempty"`
	Genre      *string   `json:"genre,omitempty"`
	Duration   *int      `json:"duration,omitempty"` // seconds
	FilePath   string    `json:"file_path"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	CoverImage *string   `json:"cover_image,omitempty"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	IsPublic   bool      `json:"is_public"`
	PlayCount  int64     `json:"play_count"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Denormalized for listings.
	UploaderUsername string `json:"uploader_username,omitempty"`
	LikeCount        int    `json:"like_count"`
}

type TrackFilter struct {
	Search string
	Genre  string
	Artist string
	Page   int
	Limit  int
}

type Pagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

func NewPagination(page, limit, total int) Pagination {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}
