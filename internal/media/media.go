// Package media uploads inventory images and supplier documents
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sergioamr/farm-management/internal/model"
)

// ErrDisabled is returned when no upload backend is configured
var ErrDisabled = errors.New("media uploads are not configured")

// Kind selects how the backend treats a file
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "raw"
)

// Uploader stores a file and describes where it ended up
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, filename, folder string, kind Kind) (*model.Attachment, error)
}

// CloudinaryUploader uploads to Cloudinary under a root folder
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
	now    func() time.Time
}

// NewCloudinaryUploader connects with a cloudinary:// URL
func NewCloudinaryUploader(cloudinaryURL, folder string) (*CloudinaryUploader, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary URL is required")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: folder, now: time.Now}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, filename, folder string, kind Kind) (*model.Attachment, error) {
	dest := strings.Trim(u.folder+"/"+folder, "/")
	result, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:       PublicID(filename, u.now()),
		Folder:         dest,
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
		ResourceType:   string(kind),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", kind, err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload %s: %s", kind, result.Error.Message)
	}

	url := result.SecureURL
	if url == "" {
		url = forceHTTPS(result.URL)
	}
	return &model.Attachment{
		Name:       filename,
		URL:        url,
		PublicID:   result.PublicID,
		UploadedAt: u.now().UTC(),
	}, nil
}

// PublicID derives a unique id from the file name without its extension
func PublicID(filename string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	return fmt.Sprintf("%s_%d", base, at.UnixNano())
}

func forceHTTPS(url string) string {
	if strings.HasPrefix(url, "http://") {
		return "https://" + strings.TrimPrefix(url, "http://")
	}
	return url
}

// Disabled rejects every upload with ErrDisabled
type Disabled struct{}

func (Disabled) Upload(context.Context, io.Reader, string, string, Kind) (*model.Attachment, error) {
	return nil, ErrDisabled
}
