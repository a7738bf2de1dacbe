package repository

import (
	"context"
	"fmt"
	"time"

	apperrors "mealtap/internal/errors"
	"mealtap/internal/supabase"
)

// PhotoStore stores meal photos in a private bucket and issues short-lived
// read links. Upload never replaces an existing object; it fails with
// ErrPhotoExists instead.
type PhotoStore interface {
	Upload(ctx context.Context, token, path string, data []byte, contentType string) error
	SignedURL(ctx context.Context, token, path string, ttl time.Duration) (string, error)
}

type supabasePhotoStore struct {
	client *supabase.Client
	bucket string
}

// NewSupabasePhotoStore creates a photo store backed by Supabase Storage.
func NewSupabasePhotoStore(client *supabase.Client, bucket string) PhotoStore {
	return &supabasePhotoStore{client: client, bucket: bucket}
}

func (s *supabasePhotoStore) Upload(ctx context.Context, token, path string, data []byte, contentType string) error {
	err := s.client.Upload(ctx, token, s.bucket, path, data, supabase.UploadOptions{
		ContentType: contentType,
		Upsert:      false,
	})
	if supabase.IsConflict(err) {
		return fmt.Errorf("%w: %s", apperrors.ErrPhotoExists, path)
	}
	return err
}

func (s *supabasePhotoStore) SignedURL(ctx context.Context, token, path string, ttl time.Duration) (string, error) {
	return s.client.CreateSignedURL(ctx, token, s.bucket, path, ttl)
}
