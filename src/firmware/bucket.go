package firmware

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Bucket is the S3-backed firmware distribution point: a binary object plus a
// small text object naming the target version.
type Bucket struct {
	s3         *s3.S3
	bucket     string
	fileKey    string
	versionKey string
}

func NewBucket(client *s3.S3, bucket, fileKey, versionKey string) *Bucket {
	return &Bucket{s3: client, bucket: bucket, fileKey: fileKey, versionKey: versionKey}
}

// TargetVersion reads the version object and strips surrounding newlines and
// carriage returns, since the file is usually edited by hand.
func (b *Bucket) TargetVersion() (string, error) {
	out, err := b.s3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.versionKey),
	})
	if err != nil {
		return "", fmt.Errorf("get version object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read version object: %w", err)
	}
	return cleanVersion(string(data)), nil
}

// SignedURL returns a presigned download URL for the firmware binary.
func (b *Bucket) SignedURL(ttl time.Duration) (string, error) {
	req, _ := b.s3.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.fileKey),
	})
	url, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("presign firmware url: %w", err)
	}
	return url, nil
}

func cleanVersion(raw string) string {
	return strings.Trim(raw, "\n\r")
}
