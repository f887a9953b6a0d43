package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client is the part of the S3 API the fetcher needs. [s3.Client] satisfies it.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher reads artifacts from an S3 bucket (or any S3-compatible store), keyed by id under an optional prefix.
type S3Fetcher struct {
	client S3Client
	bucket string
	prefix string
}

func NewS3Fetcher(client S3Client, bucket, prefix string) *S3Fetcher {
	return &S3Fetcher{client: client, bucket: bucket, prefix: prefix}
}

type S3Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// NewS3Client builds an s3.Client. Without static keys requests are sent unsigned.
func NewS3Client(opts S3Options) *s3.Client {
	o := s3.Options{
		Region:       opts.Region,
		UsePathStyle: opts.UsePathStyle,
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
	}
	if opts.AccessKeyID != "" {
		keyID, secret := opts.AccessKeyID, opts.SecretAccessKey
		o.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{AccessKeyID: keyID, SecretAccessKey: secret, Source: "photolabel"}, nil
			}))
	} else {
		o.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(o)
}

func (f *S3Fetcher) key(id string) string {
	prefix := strings.TrimSuffix(f.prefix, "/")
	if prefix == "" {
		return id
	}
	return prefix + "/" + id
}

func (f *S3Fetcher) Fetch(ctx context.Context, id string) (io.ReadCloser, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(id)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("s3 object %s: %w", f.key(id), os.ErrNotExist)
		}
		return nil, fmt.Errorf("s3 get object %s failed: %w", f.key(id), err)
	}
	return out.Body, nil
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
