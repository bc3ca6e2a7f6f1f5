package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

// S3Archive stores original upload bytes in an S3 bucket, keyed by batch id.
// It is the best-effort archival side-channel: the importer fires it after
// persistence and never waits on it.
type S3Archive struct {
	client  *s3.Client
	bucket  string
	enabled bool
}

// NewS3Archive builds the archive sink. An empty bucket name yields a
// disabled sink whose Store returns nil without error, which is the
// "archiving unavailable" signal.
//
// For LocalStack/MinIO pass a custom endpoint; leave it empty for AWS.
func NewS3Archive(bucket, region, endpoint string) (*S3Archive, error) {
	if bucket == "" {
		return &S3Archive{enabled: false}, nil
	}

	if region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}

	ctx := context.Background()

	var (
		cfg aws.Config
		err error
	)

	if endpoint != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				"test", "test", "",
			)),
		)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}

		client := s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for LocalStack
		})

		return &S3Archive{client: client, bucket: bucket, enabled: true}, nil
	}

	cfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &S3Archive{client: s3.NewFromConfig(cfg), bucket: bucket, enabled: true}, nil
}

// Store uploads the file bytes under an imports/{batchID}/ key and returns
// the reference, or nil when the sink is disabled.
func (a *S3Archive) Store(ctx context.Context, data []byte, batchID, fileName, caption string) (*models.ArchiveRef, error) {
	if !a.enabled {
		return nil, nil
	}

	key := ArchiveKey(batchID, fileName)

	out, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
		Metadata: map[string]string{
			"caption":  caption,
			"batch-id": batchID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("archiving upload to s3: %w", err)
	}

	ref := &models.ArchiveRef{StorageKey: key}
	if out.ETag != nil {
		ref.ETag = strings.Trim(*out.ETag, `"`)
	}

	return ref, nil
}

// ArchiveKey builds the S3 object key for one upload.
// Format: imports/{batchID}/{timestamp}-{sanitized name}
func ArchiveKey(batchID, fileName string) string {
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(filepath.Base(fileName), ext)

	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)

	if base == "" {
		base = "upload"
	}

	return fmt.Sprintf("imports/%s/%d-%s%s", batchID, time.Now().UTC().Unix(), base, ext)
}
