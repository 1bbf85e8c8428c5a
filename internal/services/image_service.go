package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mapexe/storefront-backend/internal/access"
	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/config"
	"github.com/mapexe/storefront-backend/internal/utils"
)

const imageFolder = "catalog"

// LocalUploadPath is the URL prefix under which locally stored images are
// served.
const LocalUploadPath = "/uploads"

// ImageService stores catalog images in S3, or on local disk when no AWS
// credentials are configured.
type ImageService struct {
	s3Client s3iface.S3API
	policy   *access.Policy
	cfg      *config.Config
	now      func() time.Time
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

func NewImageService(cfg *config.Config, policy *access.Policy) (*ImageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		return &ImageService{policy: policy, cfg: cfg, now: time.Now}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewImageServiceWithClient(cfg, policy, s3.New(sess)), nil
}

// NewImageServiceWithClient uses the given S3 client instead of building one
// from the AWS settings.
func NewImageServiceWithClient(cfg *config.Config, policy *access.Policy, client s3iface.S3API) *ImageService {
	return &ImageService{
		s3Client: client,
		policy:   policy,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *ImageService) Upload(ctx context.Context, principal *access.Principal, upload ImageUpload) (*UploadResult, error) {
	if err := s.policy.Require(principal, access.ResourceUploads, access.ActionCreate); err != nil {
		return nil, err
	}

	maxSize := int64(s.cfg.Uploads.MaxSizeMB) * 1024 * 1024
	if maxSize > 0 && upload.Size > maxSize {
		return nil, rejectUpload(fmt.Sprintf("File must be at most %d MB", s.cfg.Uploads.MaxSizeMB))
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !s.allowedExt(ext) {
		return nil, rejectUpload(fmt.Sprintf("File type %s is not allowed", ext))
	}

	// Read one byte past the limit so an understated size is still caught.
	limit := maxSize
	if limit <= 0 {
		limit = 1 << 30
	}
	data, err := io.ReadAll(io.LimitReader(upload.Body, limit+1))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to read upload: %w", err))
	}
	if int64(len(data)) > limit {
		return nil, rejectUpload(fmt.Sprintf("File must be at most %d MB", s.cfg.Uploads.MaxSizeMB))
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, rejectUpload("File is not an image")
	}

	key := s.generateKey(ext)
	if s.s3Client != nil {
		return s.uploadToS3(ctx, data, key, contentType)
	}
	return s.uploadToLocal(data, key, contentType)
}

func (s *ImageService) allowedExt(ext string) bool {
	for _, allowed := range s.cfg.Uploads.AllowedExts {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func (s *ImageService) generateKey(ext string) string {
	return path.Join(imageFolder, s.now().UTC().Format("2006/01/02"), uuid.NewString()+ext)
}

func (s *ImageService) uploadToS3(ctx context.Context, data []byte, key, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("S3 upload failed")
		return nil, apperr.Internal(fmt.Errorf("failed to upload to S3: %w", err))
	}

	return &UploadResult{
		URL:      s.s3URL(key),
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *ImageService) uploadToLocal(data []byte, key, contentType string) (*UploadResult, error) {
	dest := filepath.Join(s.cfg.Uploads.LocalDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to create upload dir: %w", err))
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to write upload: %w", err))
	}

	return &UploadResult{
		URL:      strings.TrimRight(s.cfg.Uploads.PublicURL, "/") + "/" + key,
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *ImageService) s3URL(key string) string {
	if base := strings.TrimRight(s.cfg.AWS.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AWS.S3Bucket, s.cfg.AWS.Region, key)
}

func rejectUpload(message string) error {
	return apperr.Validation([]utils.ValidationError{
		utils.NewValidationError("file", "upload", message),
	})
}
