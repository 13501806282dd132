package sinks

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ruslano69/dbdump/pkg/config"
)

// uploader - часть manager.Uploader, нужная приемнику
type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3 загружает дамп в бакет S3 (или S3-совместимое хранилище)
type S3 struct {
	config   config.S3Config
	uploader uploader
}

// NewS3 создает S3 приемник
func NewS3(cfg config.S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for S3")
	}
	return &S3{config: cfg}, nil
}

func (s *S3) connect(ctx context.Context) error {
	if s.uploader != nil {
		return nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if s.config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.config.Region))
	}
	if s.config.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.config.AccessKey, s.config.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.config.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.config.Endpoint)
		}
		o.UsePathStyle = s.config.UsePathStyle
	})

	s.uploader = manager.NewUploader(client)
	return nil
}

// Key возвращает ключ объекта для файла
func (s *S3) Key(file string) string {
	return path.Join(s.config.Prefix, filepath.Base(file))
}

// Upload загружает файл (multipart для больших файлов делает manager.Uploader)
func (s *S3) Upload(ctx context.Context, file string) error {
	if err := s.connect(ctx); err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.Key(file)),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s: %w", file, s.config.Bucket, err)
	}
	return nil
}

// Close ничего не делает: HTTP клиент SDK не требует закрытия
func (s *S3) Close() error { return nil }

// Type возвращает тип приемника
func (s *S3) Type() string { return "s3" }
