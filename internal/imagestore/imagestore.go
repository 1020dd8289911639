// Package imagestore decodes uploaded meal photos and archives them.
package imagestore

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"stomatrack/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImageBytes bounds a decoded upload.
const MaxImageBytes = 8 << 20

var ErrInvalidImage = errors.New("invalid image")

// Store archives a decoded image and returns a URL for it.
type Store interface {
	Put(ctx context.Context, userID string, img models.ImageInput) (string, error)
}

// Nop is used when archiving is disabled.
type Nop struct{}

func (Nop) Put(context.Context, string, models.ImageInput) (string, error) { return "", nil }

// DecodeImage accepts either a data URL ("data:image/jpeg;base64,...") or raw
// base64 with the MIME type given separately.
func DecodeImage(raw, mimeType string) (models.ImageInput, error) {
	raw = strings.TrimSpace(raw)
	data := raw

	if strings.HasPrefix(raw, "data:") {
		meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return models.ImageInput{}, fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
		}
		mimeType = strings.TrimSuffix(meta, ";base64")
		data = payload
	}

	// Exact decoded size, checked before allocating the buffer.
	if base64.RawStdEncoding.DecodedLen(len(strings.TrimRight(data, "="))) > MaxImageBytes {
		return models.ImageInput{}, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidImage, MaxImageBytes)
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return models.ImageInput{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(decoded) == 0 {
		return models.ImageInput{}, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	if len(decoded) > MaxImageBytes {
		return models.ImageInput{}, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidImage, MaxImageBytes)
	}

	if mimeType == "" {
		mimeType = http.DetectContentType(decoded)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return models.ImageInput{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, mimeType)
	}

	return models.ImageInput{MIMEType: mimeType, Data: decoded}, nil
}

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string
}

// S3Store uploads images to an S3 bucket.
type S3Store struct {
	client s3API
	cfg    S3Config
	logger *zap.Logger
	now    func() time.Time
}

// NewS3Store loads AWS credentials from the default chain.
func NewS3Store(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config for S3: %w", err)
	}

	logger.Info("S3 image archive enabled",
		zap.String("bucket", cfg.Bucket),
		zap.String("region", awsCfg.Region))

	return newS3Store(s3.NewFromConfig(awsCfg), cfg, logger), nil
}

func newS3Store(client s3API, cfg S3Config, logger *zap.Logger) *S3Store {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return &S3Store{client: client, cfg: cfg, logger: logger, now: time.Now}
}

// Put stores the image under <prefix><userID>/<date>/<uuid><ext>.
func (s *S3Store) Put(ctx context.Context, userID string, img models.ImageInput) (string, error) {
	key := fmt.Sprintf("%s%s/%s/%s%s",
		s.cfg.Prefix,
		userID,
		s.now().UTC().Format("2006/01/02"),
		uuid.NewString(),
		extensionFor(img.MIMEType))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.MIMEType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	s.logger.Debug("Image archived", zap.String("key", key), zap.Int("bytes", len(img.Data)))

	if s.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if _, sub, ok := strings.Cut(contentType, "/"); ok {
		return "." + sub
	}
	return ""
}
