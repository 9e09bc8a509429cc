package s3

import (
	"bufio"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"
)

type Option func(*Repository)

func WithRegion(region string) Option {
	return func(r *Repository) {
		r.Region = region
	}
}

func WithBucket(bucket string) Option {
	return func(r *Repository) {
		r.Bucket = bucket
	}
}

func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.Prefix = prefix
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

func WithForcePathStyle(forcePathStyle bool) Option {
	return func(r *Repository) {
		r.ForcePathStyle = forcePathStyle
	}
}

func WithEndpoint(endpoint string) Option {
	return func(r *Repository) {
		r.Endpoint = endpoint
	}
}

// Repository stores artifacts as objects under Bucket/Prefix. S3 object
// PUTs are already atomic, so no temp-object dance is needed: a key is
// visible only once its content is complete.
type Repository struct {
	logger   *zap.Logger
	client   *s3.S3
	uploader *s3manager.Uploader

	Endpoint       string
	Region         string
	Bucket         string
	Prefix         string
	ForcePathStyle bool
}

func New(opts ...Option) *Repository {
	r := &Repository{
		logger: zap.NewNop(),
	}

	for _, o := range opts {
		o(r)
	}

	awsConfig := &aws.Config{
		Region:           aws.String(r.Region),
		S3ForcePathStyle: aws.Bool(r.ForcePathStyle),
	}

	if r.Endpoint != "" {
		awsConfig.Endpoint = aws.String(r.Endpoint)
	}

	sess, _ := session.NewSession(awsConfig)
	r.client = s3.New(sess)
	r.uploader = s3manager.NewUploader(sess)

	return r
}

func (r *Repository) objectPath(key string) string {
	return path.Join(r.Prefix, key)
}

func (r *Repository) Write(ctx context.Context, key string, reader io.Reader) error {
	objPath := r.objectPath(key)

	r.logger.Debug(
		"s3 write",
		zap.String("key", key),
		zap.String("object_path", objPath),
		zap.String("bucket", r.Bucket),
	)

	_, err := r.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(objPath),
		Body:   bufio.NewReader(reader),
	})
	return err
}

func (r *Repository) Read(ctx context.Context, key string) ([]byte, error) {
	out, err := r.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(r.objectPath(key)),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (r *Repository) List(ctx context.Context, prefix string) ([]string, error) {
	objPrefix := r.objectPath(prefix)

	trim := ""
	if r.Prefix != "" {
		trim = strings.TrimSuffix(r.Prefix, "/") + "/"
	}

	var keys []string
	err := r.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.Bucket),
		Prefix: aws.String(objPrefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.StringValue(obj.Key), trim))
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)
	return keys, nil
}

func (r *Repository) Exists(ctx context.Context, key string) (bool, error) {
	out, err := r.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(r.objectPath(key)),
	})
	if err != nil {
		// aws-sdk-go reports a missing key as a NotFound request failure.
		if reqErr, ok := err.(interface{ Code() string }); ok {
			if reqErr.Code() == "NotFound" || reqErr.Code() == s3.ErrCodeNoSuchKey {
				return false, nil
			}
		}
		return false, err
	}
	return aws.Int64Value(out.ContentLength) > 0, nil
}
