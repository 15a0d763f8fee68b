package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// GeneratePresignedPutURL generates a presigned PUT URL for the provided
// bucket/key so clients upload product images directly to S3.
func GeneratePresignedPutURL(ctx context.Context, cfg sdkaws.Config, bucket, key, contentType string, expirySeconds int64) (string, error) {
	presigner := s3.NewPresignClient(s3.NewFromConfig(cfg))

	input := &s3.PutObjectInput{
		Bucket: sdkaws.String(bucket),
		Key:    sdkaws.String(key),
	}
	if contentType != "" {
		input.ContentType = sdkaws.String(contentType)
	}

	presigned, err := presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = time.Duration(expirySeconds) * time.Second
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign put object: %w", err)
	}
	return presigned.URL, nil
}
