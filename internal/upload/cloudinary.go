package upload

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CloudinaryStore uploads images to a Cloudinary folder.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errors.Wrap(err, "init cloudinary")
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: "receipt-" + uuid.NewString(),
	})
	if err != nil {
		return "", errors.Wrap(err, "cloudinary upload")
	}
	if resp.Error.Message != "" {
		return "", errors.New("cloudinary upload: " + resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Remove destroys the asset named by a secure URL this store produced.
func (s *CloudinaryStore) Remove(ctx context.Context, ref string) error {
	publicID := publicIDFromURL(ref, s.folder)
	if publicID == "" {
		return nil
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return errors.Wrap(err, "cloudinary destroy")
}

func publicIDFromURL(ref, folder string) string {
	idx := strings.Index(ref, folder+"/")
	if idx < 0 {
		return ""
	}
	id := ref[idx:]
	return strings.TrimSuffix(id, path.Ext(id))
}
