package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxAvatarFileSize is the maximum allowed avatar upload (2MB).
	MaxAvatarFileSize = 2 * 1024 * 1024
	// FolderAvatars is the S3 prefix for profile pictures.
	FolderAvatars = "avatars"
)

// Allowed avatar MIME types and extensions.
var (
	AllowedAvatarTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	}
	AllowedAvatarExtensions = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".gif":  "image/gif",
	}
)

// S3Config holds S3 client configuration.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	AvatarsBucket   string
}

// S3 uploads and removes avatar objects.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or the environment.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		logger.Info("S3 client using static credentials", zap.String("region", cfg.Region), zap.String("avatars_bucket", cfg.AvatarsBucket))
	} else {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ValidateAvatarFileType reports whether the content type or extension is an accepted image.
func ValidateAvatarFileType(contentType, filename string) bool {
	if contentType != "" {
		if _, ok := AllowedAvatarTypes[strings.ToLower(contentType)]; ok {
			return true
		}
	}
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		if _, ok := AllowedAvatarExtensions[ext]; ok {
			return true
		}
	}
	return false
}

// ContentTypeForFilename returns the MIME type for an avatar filename extension.
func ContentTypeForFilename(filename string) string {
	if ct, ok := AllowedAvatarExtensions[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// AvatarKey returns a fresh object key: avatars/{user_id}/{uuid}{ext}.
// A new key per upload keeps cached URLs of the previous picture from going stale.
func AvatarKey(userID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := AllowedAvatarExtensions[ext]; !ok {
		ext = ".jpg"
	}
	return path.Join(FolderAvatars, userID, uuid.New().String()+ext)
}

// PublicObjectURL returns the public URL for an object in the avatars bucket.
func (s *S3) PublicObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AvatarsBucket, s.cfg.Region, key)
}

// KeyFromURL extracts the object key from a URL built by PublicObjectURL, or "" when it is not ours.
func (s *S3) KeyFromURL(url string) string {
	prefix := s.PublicObjectURL("")
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

// UploadAvatar streams a picture to the avatars bucket with public-read ACL and returns its URL.
func (s *S3) UploadAvatar(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AvatarsBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	}
	if contentLength > 0 {
		input.ContentLength = aws.Int64(contentLength)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return s.PublicObjectURL(key), nil
}

// DeleteAvatar removes an avatar object.
func (s *S3) DeleteAvatar(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.AvatarsBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
