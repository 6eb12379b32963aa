package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
)

const (
	defaultS3Region = "us-east-1"
	defaultS3Key    = "fishtank/data.json"
)

// S3Config locates the snapshot object. Endpoint and PathStyle target
// S3-compatible servers such as MinIO; empty credentials fall back to the
// default AWS chain.
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// s3API is the part of *s3.Client the codec needs.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Codec keeps the document in one S3 object. A PutObject either fully
// replaces the object or leaves the old one in place.
type S3Codec struct {
	client s3API
	bucket string
	key    string
}

func NewS3Codec(ctx context.Context, cfg S3Config) (*S3Codec, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket required", common.ErrorInvalidInput)
	}
	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, unavailable("load aws config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newS3Codec(client, cfg.Bucket, cfg.Key), nil
}

func newS3Codec(client s3API, bucket, key string) *S3Codec {
	if key == "" {
		key = defaultS3Key
	}
	return &S3Codec{client: client, bucket: bucket, key: key}
}

func (c *S3Codec) Load(ctx context.Context) (*models.Snapshot, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return loadOrInit(ctx, c, nil, false)
		}
		return nil, unavailable("get s3://"+c.bucket+"/"+c.key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, unavailable("read s3 body", err)
	}
	return loadOrInit(ctx, c, data, true)
}

func (c *S3Codec) Commit(ctx context.Context, s *models.Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return unavailable("encode", err)
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(c.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	return unavailable("put s3://"+c.bucket+"/"+c.key, err)
}

func (c *S3Codec) Close() error { return nil }
