package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type S3Config struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
}

// Client stores message attachments in S3. The engine only ever persists the
// returned URL and mime category on a message; the bytes live here.
type Client struct {
	cfg S3Config
	s3  *s3.Client
}

func NewClient(ctx context.Context, cfg S3Config) (*Client, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if parsed, err := url.Parse(endpoint); err == nil {
			endpoint = parsed.String()
		}
		opts = append(opts, config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				if service == s3.ServiceID {
					return aws.Endpoint{URL: endpoint, SigningRegion: cfg.Region}, nil
				}
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			}),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return &Client{cfg: cfg, s3: s3Client}, nil
}

// Store uploads the attachment bytes and returns the public URL and the mime
// category ("image" or "file") the message record keeps.
func (c *Client) Store(ctx context.Context, data []byte, mimeHint string) (string, string, error) {
	if c == nil {
		return "", "", errors.New("s3 client not initialized")
	}
	if len(data) == 0 {
		return "", "", errors.New("attachment is empty")
	}

	key := fmt.Sprintf("attachments/%d/%s", time.Now().UTC().Year(), uuid.New().String())
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if mimeHint != "" {
		input.ContentType = aws.String(mimeHint)
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return "", "", err
	}

	return c.FileURL(key), MimeCategory(mimeHint), nil
}

func (c *Client) FileURL(key string) string {
	if c == nil || key == "" {
		return ""
	}
	if c.cfg.PublicBase != "" {
		return c.cfg.PublicBase + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.cfg.Bucket, c.cfg.Region, key)
}

// MimeCategory folds a mime type into the two categories messages track.
func MimeCategory(mimeHint string) string {
	if strings.HasPrefix(mimeHint, "image/") {
		return "image"
	}
	return "file"
}
