package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"pedium/internal/config"
)

// allowedImageTypes are the content types accepted for cover images
var allowedImageTypes = []string{
	"image/jpeg", "image/jpg", "image/png",
	"image/gif", "image/webp",
}

// fileService uploads cover images to Cloudinary and derives their
// delivery URLs. Stored articles reference images by public id only;
// URLs are always derived at read time.
type fileService struct {
	cloudinary *cloudinary.Cloudinary
	cfg        config.StorageConfig
	logger     *zap.Logger
}

// NewFileService creates the image storage service. A nil Cloudinary
// client is allowed; uploads then fail with a validation error and URL
// derivation returns empty strings, so the rest of the app keeps
// working without image support.
func NewFileService(cld *cloudinary.Cloudinary, cfg config.StorageConfig, logger *zap.Logger) FileService {
	return &fileService{
		cloudinary: cld,
		cfg:        cfg,
		logger:     logger,
	}
}

// Upload validates and uploads one image, returning its public id
func (s *fileService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	if s.cloudinary == nil {
		return "", NewValidationError("image uploads are not configured", nil)
	}
	if header.Size > s.cfg.MaxFileSize {
		return "", NewValidationError(
			fmt.Sprintf("image exceeds the %d byte limit", s.cfg.MaxFileSize), nil)
	}
	contentType := header.Header.Get("Content-Type")
	if !slices.Contains(allowedImageTypes, contentType) {
		return "", NewValidationError(
			fmt.Sprintf("unsupported image type %q", contentType), nil)
	}

	result, err := s.cloudinary.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         s.cfg.UploadFolder,
		ResourceType:   "image",
		UseFilename:    boolPtr(false),
		UniqueFilename: boolPtr(true),
		Tags:           []string{"pedium", "cover_image"},
	})
	if err != nil {
		s.logger.Error("cover image upload failed",
			zap.Error(err),
			zap.String("filename", header.Filename),
		)
		return "", NewInternalError("failed to upload image")
	}

	s.logger.Info("cover image uploaded",
		zap.String("public_id", result.PublicID),
		zap.Int("bytes", result.Bytes),
	)
	return result.PublicID, nil
}

// PreviewURL derives the feed-card rendition: width-limited with
// automatic quality.
func (s *fileService) PreviewURL(publicID string) string {
	if s.cloudinary == nil || publicID == "" {
		return ""
	}
	img, err := s.cloudinary.Image(publicID)
	if err != nil {
		s.logger.Warn("preview url derivation failed", zap.String("public_id", publicID), zap.Error(err))
		return ""
	}
	img.Transformation = fmt.Sprintf("w_%d,c_limit,q_auto", s.cfg.PreviewWidth)
	url, err := img.String()
	if err != nil {
		s.logger.Warn("preview url derivation failed", zap.String("public_id", publicID), zap.Error(err))
		return ""
	}
	return url
}

// ViewURL derives the full-size rendition for the article page
func (s *fileService) ViewURL(publicID string) string {
	if s.cloudinary == nil || publicID == "" {
		return ""
	}
	img, err := s.cloudinary.Image(publicID)
	if err != nil {
		s.logger.Warn("view url derivation failed", zap.String("public_id", publicID), zap.Error(err))
		return ""
	}
	url, err := img.String()
	if err != nil {
		s.logger.Warn("view url derivation failed", zap.String("public_id", publicID), zap.Error(err))
		return ""
	}
	return url
}

func boolPtr(b bool) *bool {
	return &b
}
