package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/windoze95/dapur-api/internal/config"
)

// newS3Client creates a new S3 client from the app config.
// When AWS access key and secret are provided, static credentials are used;
// otherwise the default credential chain is kept (IAM role, instance
// profile, etc.).
func newS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.EnvVars.AWSRegion),
	}

	if cfg.EnvVars.AWSAccessKeyID != "" && cfg.EnvVars.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.EnvVars.AWSAccessKeyID,
			cfg.EnvVars.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// PDFUploader publishes exported recipe PDFs to the configured bucket.
type PDFUploader struct {
	Cfg *config.Config
}

// NewPDFUploader creates a PDFUploader.
func NewPDFUploader(cfg *config.Config) *PDFUploader {
	return &PDFUploader{Cfg: cfg}
}

// UploadPDF uploads pdfBytes under s3Key and returns the object URL.
func (u *PDFUploader) UploadPDF(ctx context.Context, pdfBytes []byte, s3Key string) (string, error) {
	if !u.Cfg.SharingEnabled() {
		return "", fmt.Errorf("pdf sharing is not configured")
	}
	client, err := newS3Client(ctx, u.Cfg)
	if err != nil {
		return "", err
	}

	uploader := manager.NewUploader(client)

	result, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(u.Cfg.EnvVars.S3Bucket),
		Key:                aws.String(s3Key),
		Body:               bytes.NewReader(pdfBytes),
		ContentType:        aws.String("application/pdf"),
		ContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", fileName(s3Key))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return result.Location, nil
}

// DeletePDF removes a previously shared PDF.
func (u *PDFUploader) DeletePDF(ctx context.Context, s3Key string) error {
	client, err := newS3Client(ctx, u.Cfg)
	if err != nil {
		return err
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.Cfg.EnvVars.S3Bucket),
		Key:    aws.String(s3Key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// GeneratePDFKey generates the S3 key for a shared recipe PDF. Each share
// gets its own object so links are not guessable from the recipe ID.
func GeneratePDFKey(username string, recipeID int) string {
	return fmt.Sprintf("exports/%s/recipe_%d_%s.pdf", strings.ToLower(username), recipeID, uuid.NewString())
}

func fileName(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
