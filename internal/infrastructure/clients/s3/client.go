// Package s3 stores encounter audio and retrieves transcription output.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/soterohealth/medscribe/internal/domain/providers"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

// ObjectAPI is the slice of the S3 API the client uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Client uploads audio recordings and fetches stored objects.
type Client struct {
	api    ObjectAPI
	bucket string
}

// NewClient creates an S3 client bound to one bucket.
func NewClient(api ObjectAPI, bucket string) (*Client, error) {
	if api == nil {
		return nil, errors.New("s3 object API is required")
	}
	if bucket == "" {
		return nil, errors.New("s3 bucket name is required")
	}
	return &Client{api: api, bucket: bucket}, nil
}

// UploadAudio stores the local file under key and returns its s3:// URI.
func (c *Client) UploadAudio(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", apperrors.NewIOError("open audio file "+localPath, err)
	}
	defer f.Close()

	_, err = c.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentTypeForAudio(localPath)),
	})
	if err != nil {
		return "", apperrors.NewExternalError("upload audio to s3://"+c.bucket+"/"+key, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", c.bucket, key)
	log.Debug().Str("uri", uri).Msg("audio uploaded")
	return uri, nil
}

// FetchObject reads the full body of an object. The bucket argument allows
// fetching transcription output written to a different bucket than the one
// the client uploads to.
func (c *Client) FetchObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, apperrors.NewExternalError("fetch s3://"+bucket+"/"+key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperrors.NewExternalError("read s3://"+bucket+"/"+key, err)
	}
	return body, nil
}

func contentTypeForAudio(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m4a", ".mp4":
		return "audio/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

var (
	_ providers.MediaStore = (*Client)(nil)
	_ ObjectAPI            = (*awss3.Client)(nil)
)
