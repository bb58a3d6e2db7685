// Package export uploads a user's entries as a JSON document to
// S3-compatible object storage.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("export storage is not configured")

// Settings locates the bucket. An empty BaseEndpoint uses AWS itself.
type Settings struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	Bucket       string
}

// EntrySource is the slice of the data-access facade the exporter reads.
type EntrySource interface {
	FetchAllEntries(ctx context.Context, userID, from, to string) ([]models.Entry, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Document is the exported payload.
type Document struct {
	UserID     string         `json:"user_id"`
	From       string         `json:"from,omitempty"`
	To         string         `json:"to,omitempty"`
	ExportedAt time.Time      `json:"exported_at"`
	Entries    []models.Entry `json:"entries"`
}

type S3Exporter struct {
	src    EntrySource
	client objectPutter
	bucket string
	now    func() time.Time
}

// NewS3Exporter builds an S3 client with static credentials. Settings
// without a bucket yield ErrNotConfigured.
func NewS3Exporter(ctx context.Context, src EntrySource, st Settings) (*S3Exporter, error) {
	if st.Bucket == "" {
		return nil, ErrNotConfigured
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(st.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(st.AccessKey, st.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if st.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(st.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newExporter(src, client, st.Bucket), nil
}

func newExporter(src EntrySource, client objectPutter, bucket string) *S3Exporter {
	return &S3Exporter{src: src, client: client, bucket: bucket, now: time.Now}
}

// ObjectKey is exports/<user>/<yyyy>/<mm>/<dd>/<uuid>.json for the day t.
func ObjectKey(userID string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("exports/%s/%04d/%02d/%02d/%s.json", userID, t.Year(), int(t.Month()), t.Day(), uuid.NewString())
}

// Export uploads userID's entries in [from, to] and returns the object key.
func (e *S3Exporter) Export(ctx context.Context, userID, from, to string) (string, error) {
	entries, err := e.src.FetchAllEntries(ctx, userID, from, to)
	if err != nil {
		return "", err
	}

	now := e.now()
	body, err := json.MarshalIndent(Document{
		UserID:     userID,
		From:       from,
		To:         to,
		ExportedAt: now.UTC(),
		Entries:    entries,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	key := ObjectKey(userID, now)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}
