package storage

import (
	"context"
	"io"
)

type Kind string

const (
	KindMusic Kind = "music"
	KindImage Kind = "images"
)

type StoredFile struct {
	// URL is the public URL clients use to fetch the file.
	URL  string
	Size int64
}

// FileStore is the media storage collaborator: it places uploaded bytes
// somewhere durable and resolves them to public URLs.
type FileStore interface {
	Save(ctx context.Context, r io.Reader, kind Kind, originalName string) (*StoredFile, error)
	Remove(ctx context.Context, url string) error
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".flac": true, ".m4a": true, ".aac": true,
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// AllowedExt reports whether a file extension is acceptable for the kind.
func AllowedExt(kind Kind, ext string) bool {
	switch kind {
	case KindMusic:
		return audioExts[ext]
	case KindImage:
		return imageExts[ext]
	}
	return false
}
