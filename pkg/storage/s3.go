package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// FolderAudio is the S3 prefix for archived audio uploads.
const FolderAudio = "audio"

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	AudioBucket          string
	PresignExpireMinutes int
}

// S3 provides streaming uploads and pre-signed downloads for the audio
// archive bucket.
type S3 struct {
	client   *s3.Client
	presign  *s3.PresignClient
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client. Static credentials from config are used when
// present; otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	} else if logger != nil {
		logger.Warn("S3 client using default credential chain")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024 // 5MB parts for streaming
	})
	return &S3{
		client:   client,
		presign:  s3.NewPresignClient(client),
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// AudioKey builds the object key for a user's archived upload:
// audio/{user_id}/{summary-or-job id}{ext}.
func AudioKey(userID, id, filename string) string {
	return fmt.Sprintf("%s/%s/%s%s", FolderAudio, userID, id, path.Ext(filename))
}

// Upload streams body into the audio bucket and returns the object URL.
func (s *S3) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AudioBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	return out.Location, nil
}

// PresignDownload returns a time-limited GET URL for an archived object.
func (s *S3) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.AudioBucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.PresignExpire()))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// PresignExpire returns the configured presign TTL.
func (s *S3) PresignExpire() time.Duration {
	minutes := s.cfg.PresignExpireMinutes
	if minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}
