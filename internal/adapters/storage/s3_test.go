package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Store_Put(t *testing.T) {
	tests := []struct {
		name    string
		cfg     S3Config
		wantURL string
	}{
		{
			name:    "aws url",
			cfg:     S3Config{Bucket: "flyers", Region: "eu-west-1"},
			wantURL: "https://flyers.s3.eu-west-1.amazonaws.com/events/ev-1/flyer.png",
		},
		{
			name:    "custom endpoint",
			cfg:     S3Config{Bucket: "flyers", Endpoint: "http://localhost:9000/"},
			wantURL: "http://localhost:9000/flyers/events/ev-1/flyer.png",
		},
		{
			name:    "public base url",
			cfg:     S3Config{Bucket: "flyers", PublicBaseURL: "https://cdn.example.com/"},
			wantURL: "https://cdn.example.com/events/ev-1/flyer.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeS3{}
			store := newS3Store(client, tt.cfg)
			url, err := store.Put(context.Background(), "events/ev-1/flyer.png", "image/png", []byte("png"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, "flyers", aws.ToString(client.input.Bucket))
			assert.Equal(t, "image/png", aws.ToString(client.input.ContentType))
			assert.Equal(t, "png", client.body)
		})
	}
}

func TestS3Store_PutError(t *testing.T) {
	store := newS3Store(&fakeS3{err: errors.New("access denied")}, S3Config{Bucket: "flyers", Region: "us-east-1"})
	_, err := store.Put(context.Background(), "k", "image/png", nil)
	require.ErrorContains(t, err, "access denied")

	_, err = newS3Store(&fakeS3{}, S3Config{}).Put(context.Background(), "k", "image/png", nil)
	require.Error(t, err)
}
