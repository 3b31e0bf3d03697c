package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"stagehand/config"
	"stagehand/infras/otel"
	"stagehand/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	otelAttrObjectKey = "s3.key"
	otelAttrBucket    = "s3.bucket"
	otelAttrSize      = "s3.size"

	// sniffLen is how much of an upload http.DetectContentType looks at.
	sniffLen     = 512
	cacheControl = "public, max-age=31536000, immutable"
)

// S3 stores student photos and uniform images. Objects are immutable: a replacement is uploaded
// under a fresh name and the old object deleted.
type S3 interface {
	UploadFile(ctx context.Context, bucketName, directory string, file multipart.File, fileHeader *multipart.FileHeader, fileName string) (url string, err error)
	DeleteFile(ctx context.Context, bucketName, directory, objectName string) error
	GetObjectNameFromURL(bucketName, url string) (objectName string)
}

type s3Impl struct {
	client *s3.Client
	cfg    *config.Config
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) S3 {
	s3Cfg := cfg.External.S3

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s3Cfg.AccessKeyID, s3Cfg.SecretAccessKey, "")),
		awsConfig.WithRegion(s3Cfg.Region),
	)
	if err != nil {
		log.Error().Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3Cfg.APIEndpoint != "" {
			o.BaseEndpoint = aws.String(s3Cfg.APIEndpoint)
		}

		o.UsePathStyle = true
	})

	log.Info().Str("region", s3Cfg.Region).Str("bucket", s3Cfg.BucketName).Msg("S3 client initialized")

	return &s3Impl{
		client: client,
		cfg:    cfg,
		otel:   otel,
	}
}

// UploadFile streams file to directory/fileName and returns its public URL. An empty bucketName
// uses the configured bucket.
func (svc *s3Impl) UploadFile(ctx context.Context, bucketName, directory string, file multipart.File, fileHeader *multipart.FileHeader, fileName string) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".UploadFile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucketName = svc.bucket(bucketName)
	key := ObjectKey(directory, fileName)

	scope.SetAttributes(map[string]any{
		otelAttrObjectKey: key,
		otelAttrBucket:    bucketName,
		otelAttrSize:      fileHeader.Size,
	})

	contentType, err := detectContentType(file, fileHeader)
	if err != nil {
		return constant.Empty, err
	}

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(fileHeader.Size),
		CacheControl:  aws.String(cacheControl),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload file to S3")

		return constant.Empty, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return PublicURL(svc.cfg.External.S3.PublicDomain, key), nil
}

// DeleteFile removes directory/objectName. Deleting a missing object succeeds.
func (svc *s3Impl) DeleteFile(ctx context.Context, bucketName, directory, objectName string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".DeleteFile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucketName = svc.bucket(bucketName)
	key := ObjectKey(directory, objectName)

	scope.SetAttributes(map[string]any{
		otelAttrObjectKey: key,
		otelAttrBucket:    bucketName,
	})

	if _, err = svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	}); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete file from S3")

		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

// GetObjectNameFromURL recovers the object key from a URL produced by UploadFile, or "" when the
// URL does not point into this storage.
func (svc *s3Impl) GetObjectNameFromURL(bucketName, url string) (objectName string) {
	return ObjectKeyFromURL(svc.cfg.External.S3.PublicDomain, svc.cfg.External.S3.APIEndpoint, svc.bucket(bucketName), url)
}

func (svc *s3Impl) bucket(name string) string {
	if name == "" {
		return svc.cfg.External.S3.BucketName
	}

	return name
}

// ObjectKey joins directory and name into a key without a leading slash.
func ObjectKey(directory, name string) string {
	return strings.TrimPrefix(path.Join(directory, name), "/")
}

func PublicURL(publicDomain, key string) string {
	return strings.TrimSuffix(publicDomain, "/") + "/" + key
}

func ObjectKeyFromURL(publicDomain, apiEndpoint, bucketName, url string) string {
	prefixes := []string{
		strings.TrimSuffix(publicDomain, "/") + "/",
		fmt.Sprintf("%s/%s/", strings.TrimSuffix(apiEndpoint, "/"), bucketName),
	}

	for _, prefix := range prefixes {
		if prefix == "/" {
			continue
		}

		if key, ok := strings.CutPrefix(url, prefix); ok && key != "" {
			return key
		}
	}

	return constant.Empty
}

// detectContentType trusts the part header when present and sniffs the body otherwise. file is
// rewound before returning.
func detectContentType(file io.ReadSeeker, header *multipart.FileHeader) (string, error) {
	if contentType := header.Header.Get(constant.RequestHeaderContentType); contentType != "" {
		return contentType, nil
	}

	head := make([]byte, sniffLen)

	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return constant.Empty, fmt.Errorf("failed to read upload: %w", err)
	}

	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return constant.Empty, fmt.Errorf("failed to rewind upload: %w", err)
	}

	return http.DetectContentType(head[:n]), nil
}
