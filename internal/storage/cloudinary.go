package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage stores images as image assets and everything else as
// raw assets. Image public ids drop the extension; raw ones keep it.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	client *http.Client
}

func NewCloudinaryStorage(cfg Config) (*CloudinaryStorage, error) {
	if cfg.CloudinaryURL == "" {
		return nil, errors.New("cloudinary url is required for cloudinary storage")
	}
	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration error: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStorage{cld: cld, client: http.DefaultClient}, nil
}

func (s *CloudinaryStorage) Save(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	resourceType := cloudinaryResourceType(key)
	result, err := s.cld.Upload.Upload(ctx, reader, uploader.UploadParams{
		PublicID:     cloudinaryPublicID(key, resourceType),
		ResourceType: resourceType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload rejected: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

func (s *CloudinaryStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	url, err := s.GetURL(ctx, key)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from cloudinary: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrObjectNotFound
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("cloudinary returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, key string) error {
	resourceType := cloudinaryResourceType(key)
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     cloudinaryPublicID(key, resourceType),
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	// "not found" means already gone.
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary delete rejected: %s", result.Error.Message)
	}
	return nil
}

func (s *CloudinaryStorage) Exists(ctx context.Context, key string) (bool, error) {
	url, err := s.GetURL(ctx, key)
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode < 300, nil
}

func (s *CloudinaryStorage) GetURL(ctx context.Context, key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	resourceType := cloudinaryResourceType(key)
	publicID := cloudinaryPublicID(key, resourceType)
	if resourceType == "image" {
		img, err := s.cld.Image(publicID)
		if err != nil {
			return "", err
		}
		return img.String()
	}
	file, err := s.cld.File(publicID)
	if err != nil {
		return "", err
	}
	return file.String()
}

func cloudinaryResourceType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	default:
		return "raw"
	}
}

func cloudinaryPublicID(key, resourceType string) string {
	if resourceType == "image" {
		return strings.TrimSuffix(key, path.Ext(key))
	}
	return key
}
