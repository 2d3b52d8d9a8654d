package storage

import (
	"context"
	"fmt"

	"github.com/bwise1/eventbuzz/config"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageStore re-hosts an image given by URL and returns the hosted URL.
type ImageStore interface {
	UploadImage(ctx context.Context, source string) (string, error)
}

type Cloudinary struct {
	CLD    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary returns nil without error when no Cloudinary credentials
// are configured.
func NewCloudinary(cfg *config.Config) (*Cloudinary, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary: %w", err)
	}

	return &Cloudinary{CLD: cld, folder: cfg.CloudinaryFolder}, nil
}

// UploadImage fetches source (a remote URL or local path) into the
// configured folder.
func (c *Cloudinary) UploadImage(ctx context.Context, source string) (string, error) {
	resp, err := c.CLD.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder:         c.folder,
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}
