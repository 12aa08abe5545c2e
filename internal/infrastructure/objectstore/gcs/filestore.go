// Package gcs stores uploaded files in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const defaultPublicBaseURL = "https://storage.googleapis.com"

// Config selects the bucket. CredentialsFile is a service-account key; when
// empty the client falls back to application default credentials, or to the
// emulator named by STORAGE_EMULATOR_HOST.
type Config struct {
	CredentialsFile string
	ProjectID       string
	Bucket          string
	PublicBaseURL   string
}

// NewClient builds a storage client for cfg.
func NewClient(ctx context.Context, cfg Config) (*storage.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: new client: %w", err)
	}
	return client, nil
}

// FileStore implements remote.FileStore. Objects are named by file id and
// are expected to be publicly readable through the bucket's IAM policy.
type FileStore struct {
	client    *storage.Client
	bucket    string
	projectID string
	baseURL   string
}

func NewFileStore(client *storage.Client, cfg Config) *FileStore {
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		base = defaultPublicBaseURL
	}
	return &FileStore{
		client:    client,
		bucket:    strings.TrimSpace(cfg.Bucket),
		projectID: cfg.ProjectID,
		baseURL:   base,
	}
}

func (s *FileStore) handle() (*storage.BucketHandle, error) {
	if s.client == nil {
		return nil, errors.New("gcs: storage client is nil")
	}
	if s.bucket == "" {
		return nil, errors.New("gcs: bucket is empty")
	}
	return s.client.Bucket(s.bucket), nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *FileStore) EnsureBucket(ctx context.Context) error {
	bh, err := s.handle()
	if err != nil {
		return err
	}
	_, err = bh.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("gcs: bucket attrs: %w", err)
	}
	if err := bh.Create(ctx, s.projectID, nil); err != nil {
		return fmt.Errorf("gcs: create bucket: %w", err)
	}
	return nil
}

func (s *FileStore) Put(ctx context.Context, id string, data []byte, contentType string) error {
	bh, err := s.handle()
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("gcs: object id is empty")
	}

	w := bh.Object(id).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	w.ChunkSize = 0
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs: write %s: %w", id, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: write %s: %w", id, err)
	}
	return nil
}

// URL is the public address of the object.
func (s *FileStore) URL(id string) string {
	return s.prefix() + url.PathEscape(id)
}

func (s *FileStore) IDFromURL(u string) (string, bool) {
	rest, ok := strings.CutPrefix(u, s.prefix())
	if !ok || rest == "" {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return id, true
}

// Delete removes the object. A missing object is not an error.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	bh, err := s.handle()
	if err != nil {
		return err
	}
	if err := bh.Object(id).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs: delete %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) prefix() string {
	return s.baseURL + "/" + s.bucket + "/"
}
