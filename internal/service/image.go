package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodshare/backend/config"
)

// ImageStore persists decoded image content and returns a retrievable URL.
type ImageStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
}

// S3ImageStore uploads images to S3 and returns the public object URL.
type S3ImageStore struct {
	s3Config *config.S3Config
}

// NewS3ImageStore creates an S3-backed image store.
func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	fileName := fmt.Sprintf("media/%s%s", uuid.New().String(), extensionFor(contentType))

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageStore] Successfully uploaded image to S3: %s", publicURL)

	return publicURL, nil
}

// MemoryImageStore keeps images in memory. Used by tests and as a fallback
// when no S3 bucket is configured.
type MemoryImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{objects: make(map[string][]byte)}
}

func (m *MemoryImageStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("%s%s", uuid.New().String(), extensionFor(contentType))
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return "/media/" + key, nil
}

// Get returns a stored object; only used by tests.
func (m *MemoryImageStore) Get(url string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[strings.TrimPrefix(url, "/media/")]
	return data, ok
}

// DecodeBase64Image decodes an inline base64 image payload. A
// "data:image/...;base64," prefix determines the content type; without it
// the type is sniffed from the decoded bytes.
func DecodeBase64Image(payload string) ([]byte, string, error) {
	contentType := ""
	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ";base64,", 2)
		if len(parts) != 2 {
			return nil, "", fmt.Errorf("malformed data URI")
		}
		contentType = strings.TrimPrefix(parts[0], "data:")
		payload = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image payload")
	}

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("unsupported content type %q", contentType)
	}

	return data, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
