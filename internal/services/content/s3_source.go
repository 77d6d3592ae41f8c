package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/interfaces"
)

// ObjectGetter is the part of the S3 API the source needs
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads content from an S3 (or S3-compatible) bucket under a key prefix
type S3Source struct {
	client ObjectGetter
	bucket string
	prefix string
	logger arbor.ILogger
}

// NewS3Source builds an S3 client from cfg. Static credentials are used when both keys are
// set, otherwise the default AWS credential chain applies.
func NewS3Source(ctx context.Context, bucket, prefix string, cfg common.S3Config, logger arbor.ILogger) (*S3Source, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	logger.Info().
		Str("bucket", bucket).
		Str("prefix", prefix).
		Str("region", region).
		Msg("S3 content source configured")

	return NewS3SourceWithClient(client, bucket, prefix, logger), nil
}

// NewS3SourceWithClient wraps an existing client
func NewS3SourceWithClient(client ObjectGetter, bucket, prefix string, logger arbor.ILogger) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

func (s *S3Source) Root() string {
	if s.prefix == "" {
		return "s3://" + s.bucket
	}
	return "s3://" + s.bucket + "/" + s.prefix
}

// Open gets the object for path under the prefix
func (s *S3Source) Open(ctx context.Context, p string) (io.ReadCloser, int64, error) {
	rel, err := cleanPath(p)
	if err != nil {
		return nil, 0, err
	}
	key := path.Join(s.prefix, rel)

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, 0, fmt.Errorf("%s: %w", p, interfaces.ErrContentNotFound)
		}
		return nil, 0, fmt.Errorf("failed to get object %s: %w", key, err)
	}

	size := int64(-1)
	if result.ContentLength != nil {
		size = *result.ContentLength
	}
	return result.Body, size, nil
}
