package images

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

type mockCloudinary struct {
	mock.Mock
}

func (m *mockCloudinary) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	args := m.Called(ctx, file, params)
	res, _ := args.Get(0).(*uploader.UploadResult)
	return res, args.Error(1)
}

func (m *mockCloudinary) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	args := m.Called(ctx, params)
	res, _ := args.Get(0).(*uploader.DestroyResult)
	return res, args.Error(1)
}

type fakeUploader struct {
	uploaded []string
	deleted  []string
}

func (f *fakeUploader) UploadImage(_ context.Context, _, vin, filename string, _ io.Reader) (models.Image, error) {
	f.uploaded = append(f.uploaded, vin+"/"+filename)
	return models.Image{ID: "img-1", URL: "https://cdn.example.com/img-1.jpg"}, nil
}

func (f *fakeUploader) DeleteImage(_ context.Context, _, imageID string) error {
	f.deleted = append(f.deleted, imageID)
	return nil
}

func TestCheckFilename(t *testing.T) {
	assert.NoError(t, CheckFilename("front.JPG"))
	assert.NoError(t, CheckFilename("side.webp"))
	assert.ErrorIs(t, CheckFilename("notes.pdf"), ErrUnsupportedType)
	assert.ErrorIs(t, CheckFilename("noext"), ErrUnsupportedType)
}

func TestBackendStore(t *testing.T) {
	up := &fakeUploader{}
	s := BackendStore{Client: up}

	img, err := s.Upload(context.Background(), "tok", "VIN1", "front.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "img-1", img.ID)

	_, err = s.Upload(context.Background(), "tok", "VIN1", "front.gif", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	require.NoError(t, s.Delete(context.Background(), "tok", "img-1"))
	assert.Equal(t, []string{"VIN1/front.jpg"}, up.uploaded)
	assert.Equal(t, []string{"img-1"}, up.deleted)
}

func TestCloudinaryStore_Upload(t *testing.T) {
	api := &mockCloudinary{}
	s := &CloudinaryStore{api: api, folder: "intake"}
	body := strings.NewReader("jpeg")

	api.On("Upload", mock.Anything, body, mock.MatchedBy(func(p uploader.UploadParams) bool {
		return p.Folder == "intake" && strings.HasPrefix(p.PublicID, "VIN1/")
	})).Return(&uploader.UploadResult{PublicID: "intake/VIN1/abc", SecureURL: "https://res.cloudinary.com/x.jpg"}, nil)

	img, err := s.Upload(context.Background(), "", "VIN1", "front.png", body)

	require.NoError(t, err)
	assert.Equal(t, "intake/VIN1/abc", img.ID)
	assert.Equal(t, "https://res.cloudinary.com/x.jpg", img.URL)
	api.AssertExpectations(t)
}

func TestCloudinaryStore_UploadError(t *testing.T) {
	api := &mockCloudinary{}
	s := &CloudinaryStore{api: api, folder: "intake"}
	api.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := s.Upload(context.Background(), "", "VIN1", "front.png", strings.NewReader("x"))
	assert.EqualError(t, err, "cloudinary upload failed: boom")
}

func TestCloudinaryStore_Delete(t *testing.T) {
	api := &mockCloudinary{}
	s := &CloudinaryStore{api: api}
	api.On("Destroy", mock.Anything, uploader.DestroyParams{PublicID: "gone"}).Return(&uploader.DestroyResult{Result: "not found"}, nil)
	api.On("Destroy", mock.Anything, uploader.DestroyParams{PublicID: "p-1"}).Return(&uploader.DestroyResult{Result: "ok"}, nil)
	api.On("Destroy", mock.Anything, uploader.DestroyParams{PublicID: "odd"}).Return(&uploader.DestroyResult{Result: "error"}, nil)

	assert.NoError(t, s.Delete(context.Background(), "", "p-1"))
	assert.NoError(t, s.Delete(context.Background(), "", "gone"))
	assert.Error(t, s.Delete(context.Background(), "", "odd"))
}
