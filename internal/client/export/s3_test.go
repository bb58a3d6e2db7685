package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	entries []models.Entry
	err     error
	gotUser string
}

func (f *fakeSource) FetchAllEntries(_ context.Context, userID, _, _ string) ([]models.Entry, error) {
	f.gotUser = userID
	return f.entries, f.err
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("u1", time.Date(2024, 3, 7, 23, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^exports/u1/2024/03/07/[0-9a-f-]{36}\.json$`), key)
}

func TestExport_UploadsDocument(t *testing.T) {
	src := &fakeSource{entries: []models.Entry{{ID: "e1", UserID: "u1", EntryDate: "2024-03-01", Mood: models.MoodHappy}}}
	put := &fakePutter{}
	e := newExporter(src, put, "bucket")
	e.now = func() time.Time { return time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC) }

	key, err := e.Export(context.Background(), "u1", "2024-03-01", "2024-03-31")
	require.NoError(t, err)

	assert.Equal(t, "u1", src.gotUser)
	assert.Equal(t, "bucket", aws.ToString(put.in.Bucket))
	assert.Equal(t, key, aws.ToString(put.in.Key))
	assert.Equal(t, "application/json", aws.ToString(put.in.ContentType))
	assert.EqualValues(t, len(put.body), aws.ToInt64(put.in.ContentLength))

	var doc Document
	require.NoError(t, json.Unmarshal(put.body, &doc))
	assert.Equal(t, "u1", doc.UserID)
	assert.Equal(t, "2024-03-31", doc.To)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "e1", doc.Entries[0].ID)
}

func TestExport_Errors(t *testing.T) {
	boom := errors.New("boom")

	e := newExporter(&fakeSource{err: boom}, &fakePutter{}, "b")
	_, err := e.Export(context.Background(), "u1", "", "")
	assert.ErrorIs(t, err, boom)

	e = newExporter(&fakeSource{}, &fakePutter{err: boom}, "b")
	_, err = e.Export(context.Background(), "u1", "", "")
	assert.ErrorIs(t, err, boom)
}

func TestNewS3Exporter_RequiresBucket(t *testing.T) {
	_, err := NewS3Exporter(context.Background(), &fakeSource{}, Settings{Region: "us-east-1"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	e, err := NewS3Exporter(context.Background(), &fakeSource{}, Settings{
		Region: "us-east-1", BaseEndpoint: "http://127.0.0.1:9000", AccessKey: "k", SecretKey: "s", Bucket: "b",
	})
	require.NoError(t, err)
	assert.Equal(t, "b", e.bucket)
}
