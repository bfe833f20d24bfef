package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMimeCategory(t *testing.T) {
	assert.Equal(t, "image", MimeCategory("image/png"))
	assert.Equal(t, "image", MimeCategory("image/jpeg"))
	assert.Equal(t, "file", MimeCategory("application/pdf"))
	assert.Equal(t, "file", MimeCategory(""))
}

func TestFileURL(t *testing.T) {
	withBase := &Client{cfg: S3Config{Bucket: "b", Region: "eu-west-1", PublicBase: "https://cdn.example.com"}}
	assert.Equal(t, "https://cdn.example.com/attachments/x", withBase.FileURL("attachments/x"))

	bare := &Client{cfg: S3Config{Bucket: "b", Region: "eu-west-1"}}
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/attachments/x", bare.FileURL("attachments/x"))

	var nilClient *Client
	assert.Equal(t, "", nilClient.FileURL("attachments/x"))
	assert.Equal(t, "", bare.FileURL(""))
}

func TestNewClientRequiresRegionAndBucket(t *testing.T) {
	_, err := NewClient(context.Background(), S3Config{})
	assert.Error(t, err)

	_, err = NewClient(context.Background(), S3Config{Region: "eu-west-1"})
	assert.Error(t, err)
}
