package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"newsradar/logging"
	"newsradar/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Config contains minimal configuration for creating an S3 client.
// Values are optional and will fall back to the standard AWS config/credential chain.
type S3Config struct {
	Bucket string
	// Prefix is prepended to every key; a trailing slash is added when missing
	Prefix string
	// Region to use for requests, e.g. "us-east-1". If empty, AWS defaults apply.
	Region string
	// Profile selects a named shared config/credentials profile. If empty, default chain applies.
	Profile string
	// UsePathStyle forces path-style addressing (useful for some S3-compatible providers).
	UsePathStyle bool
}

// ObjectPutter uploads a single object
type ObjectPutter interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// S3 wraps the AWS SDK for Go v2 S3 client for one bucket and prefix
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates a new S3 wrapper using the default AWS configuration chain,
// with optional overrides from S3Config.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3{client: c, bucket: cfg.Bucket, prefix: prefix}, nil
}

// Put uploads body under prefix+key
func (s *S3) Put(ctx context.Context, key string, body []byte, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to upload object to S3: %w", err)
	}
	return nil
}

// MirroredStore writes artifacts through a primary writer and copies the written
// files to object storage. Mirror failures are logged and never fail the write.
type MirroredStore struct {
	primary ArtifactWriter
	mirror  ObjectPutter
	logger  *zap.Logger
}

// NewMirroredStore wraps primary with an object-storage mirror
func NewMirroredStore(primary ArtifactWriter, mirror ObjectPutter, logger *zap.Logger) *MirroredStore {
	return &MirroredStore{
		primary: primary,
		mirror:  mirror,
		logger:  logging.OrNop(logger).Named("mirror"),
	}
}

func (m *MirroredStore) WriteRaw(ctx context.Context, stamp string, articles []*types.Article) (string, error) {
	path, err := m.primary.WriteRaw(ctx, stamp, articles)
	if err != nil {
		return "", err
	}
	m.copy(ctx, KindRaw, path)
	return path, nil
}

func (m *MirroredStore) WriteProcessed(ctx context.Context, stamp string, articles []types.ProcessedArticle) (string, error) {
	path, err := m.primary.WriteProcessed(ctx, stamp, articles)
	if err != nil {
		return "", err
	}
	m.copy(ctx, KindProcessed, path)
	return path, nil
}

func (m *MirroredStore) copy(ctx context.Context, kind, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		m.logger.Warn("failed to read artifact for mirroring", zap.String("path", path), zap.Error(err))
		return
	}
	key := kind + "/" + filepath.Base(path)
	if err := m.mirror.Put(ctx, key, data, "application/json"); err != nil {
		m.logger.Warn("failed to mirror artifact", zap.String("key", key), zap.Error(err))
		return
	}
	m.logger.Debug("mirrored artifact", zap.String("key", key))
}
