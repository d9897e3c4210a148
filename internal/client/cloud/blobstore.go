package cloud

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/prolens/internal/client/config"
	"github.com/dmitrijs2005/prolens/internal/common"
)

const keyPrefix = "materials/"

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// objectAPI is the part of *s3.Client the blob store calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// BlobStore keeps material files in one bucket and hands out public
// references of the form <base>/<bucket>/materials/<epoch-ms>_<filename>.
type BlobStore struct {
	api     objectAPI
	bucket  string
	baseURL string
	now     func() time.Time
}

// NewBlobStore builds an S3 client with static credentials and path-style
// addressing, which MinIO and most S3-compatible stores expect.
func NewBlobStore(ctx context.Context, cfg config.CloudConfig) (*BlobStore, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	api := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &BlobStore{
		api:     api,
		bucket:  cfg.S3Bucket,
		baseURL: cfg.ObjectBaseURL(),
		now:     time.Now,
	}, nil
}

// Upload stores data under a timestamped key and returns its reference.
func (b *BlobStore) Upload(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	key := fmt.Sprintf("%s%d_%s", keyPrefix, b.now().UnixMilli(), cleanName(filename))

	_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", common.ErrRemoteUnreachable, key, err)
	}

	return b.ref(key), nil
}

// Owns reports whether ref points into this store's bucket.
func (b *BlobStore) Owns(ref string) bool {
	_, ok := b.keyOf(ref)
	return ok
}

// Delete removes the object behind ref. References this store does not own
// are ignored.
func (b *BlobStore) Delete(ctx context.Context, ref string) error {
	key, ok := b.keyOf(ref)
	if !ok {
		return nil
	}

	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrRemoteUnreachable, key, err)
	}
	return nil
}

func (b *BlobStore) ref(key string) string {
	return b.baseURL + "/" + b.bucket + "/" + (&url.URL{Path: key}).EscapedPath()
}

func (b *BlobStore) keyOf(ref string) (string, bool) {
	prefix := b.baseURL + "/" + b.bucket + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}

	key, err := url.PathUnescape(strings.TrimPrefix(ref, prefix))
	if err != nil || !strings.HasPrefix(key, keyPrefix) {
		return "", false
	}
	return key, true
}

// cleanName keeps the base name of an uploaded file so it cannot escape the
// materials/ prefix.
func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
