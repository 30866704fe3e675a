package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Region        string
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

// S3 stores uploads in a bucket. Records keep the object's public URL, so
// Delete accepts either that URL or the bare key.
type S3 struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}
	return &S3{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *S3) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	ext, err := safeExt(in.Filename)
	if err != nil {
		return PutResult{}, fmt.Errorf("%w: %s", err, in.Filename)
	}
	key := path.Join(s.prefix, objectKey(in.Filename, ext))

	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			contentType = guessed
		}
	}

	put := &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        r,
		ContentType: &contentType,
	}
	if in.Size > 0 {
		put.ContentLength = &in.Size
	}
	if _, err := s.client.PutObject(ctx, put); err != nil {
		return PutResult{}, fmt.Errorf("s3 put %s: %w", key, err)
	}
	return PutResult{Key: key, URL: s.baseURL + "/" + key}, nil
}

func (s *S3) Delete(ctx context.Context, ref string) error {
	key := strings.TrimPrefix(ref, s.baseURL+"/")
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) String() string { return fmt.Sprintf("s3(%s/%s)", s.bucket, s.prefix) }
