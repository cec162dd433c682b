// Package images stores vehicle photos either through the upstream upload endpoint or
// directly in Cloudinary.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

// ErrUnsupportedType is returned for files that are not images
var ErrUnsupportedType = errors.New("unsupported image type")

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true}

// CheckFilename rejects files whose extension is not an accepted image type
func CheckFilename(name string) error {
	if !allowedExt[strings.ToLower(path.Ext(name))] {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}
	return nil
}

// Store uploads and deletes vehicle photos. token is the upstream session token.
type Store interface {
	Upload(ctx context.Context, token, vin, filename string, r io.Reader) (models.Image, error)
	Delete(ctx context.Context, token, imageID string) error
}

// Uploader is the part of the upstream client the backend store needs
type Uploader interface {
	UploadImage(ctx context.Context, token, vin, filename string, r io.Reader) (models.Image, error)
	DeleteImage(ctx context.Context, token, imageID string) error
}

// BackendStore sends photos to the upstream upload endpoint
type BackendStore struct {
	Client Uploader
}

// Upload implements Store
func (s BackendStore) Upload(ctx context.Context, token, vin, filename string, r io.Reader) (models.Image, error) {
	if err := CheckFilename(filename); err != nil {
		return models.Image{}, err
	}
	return s.Client.UploadImage(ctx, token, vin, filename, r)
}

// Delete implements Store
func (s BackendStore) Delete(ctx context.Context, token, imageID string) error {
	return s.Client.DeleteImage(ctx, token, imageID)
}

// cloudinaryAPI is the subset of the Cloudinary upload API used here
type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore uploads photos straight to a Cloudinary folder
type CloudinaryStore struct {
	api    cloudinaryAPI
	folder string
}

// NewCloudinaryStore builds a store from account credentials
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &CloudinaryStore{api: &cld.Upload, folder: folder}, nil
}

// Upload implements Store. The public id is <vin>/<uuid> so all photos of one vehicle
// share a prefix.
func (s *CloudinaryStore) Upload(ctx context.Context, _ string, vin, filename string, r io.Reader) (models.Image, error) {
	if err := CheckFilename(filename); err != nil {
		return models.Image{}, err
	}
	publicID := vin + "/" + uuid.New().String()
	res, err := s.api.Upload(ctx, r, uploader.UploadParams{
		PublicID: publicID,
		Folder:   s.folder,
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if res.Error.Message != "" {
		return models.Image{}, fmt.Errorf("cloudinary upload failed: %s", res.Error.Message)
	}
	zap.S().Debugw("image uploaded", "publicId", res.PublicID, "vin", vin)
	return models.Image{ID: res.PublicID, URL: res.SecureURL, UploadedAt: time.Now().UTC()}, nil
}

// Delete implements Store
func (s *CloudinaryStore) Delete(ctx context.Context, _ string, imageID string) error {
	res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: imageID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy failed: %s", res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy returned %q", res.Result)
	}
	return nil
}
