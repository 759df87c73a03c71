package s3store

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/clubattach/internal/client/client"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket embeds objectAPI so unexpected calls panic.
type fakeBucket struct {
	objectAPI

	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	failOn  string
	headErr error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string]string{}, types: map[string]string{}}
}

func (b *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if string(data) == b.failOn {
		return nil, errors.New("access denied")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[aws.ToString(in.Key)] = string(data)
	b.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (b *fakeBucket) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(data))}, nil
}

func (b *fakeBucket) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (b *fakeBucket) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, b.headErr
}

func fixedNow(t *testing.T) {
	t.Helper()
	old := now
	now = func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = old })
}

func TestObjectKey(t *testing.T) {
	fixedNow(t)

	k := ObjectKey("Poster.PNG")
	assert.True(t, strings.HasPrefix(k, "attachments/2026/3/7/"), k)
	assert.True(t, strings.HasSuffix(k, ".png"), k)
	assert.NotEqual(t, k, ObjectKey("Poster.PNG"))
}

func TestURLs(t *testing.T) {
	s := newStore(newFakeBucket(), Config{Bucket: "club", Endpoint: "http://minio:9000/"})
	assert.Equal(t, "http://minio:9000/club/attachments/a.png", s.ServeURL("attachments/a.png"))
	assert.Equal(t, s.ServeURL("k"), s.ThumbnailURL("k", 10, 10))

	cdn := newStore(newFakeBucket(), Config{Bucket: "club", PublicBaseURL: "https://cdn.example.edu/"})
	assert.Equal(t, "https://cdn.example.edu/k", cdn.ServeURL("k"))
}

func TestUploadBatch_PutsInOrderWithProgress(t *testing.T) {
	fixedNow(t)
	b := newFakeBucket()
	s := newStore(b, Config{Bucket: "club", PublicBaseURL: "https://cdn"})

	files := []models.RawFile{
		models.NewRawFileFromBytes("a.txt", "text/plain", []byte("alpha")),
		models.NewRawFileFromBytes("b.png", "image/png", []byte("bravo!")),
		models.NewRawFileFromBytes("c", "", []byte("c")),
	}

	var mu sync.Mutex
	var maxSent, seenTotal int64
	refs, err := s.UploadBatch(context.Background(), files, func(sent, total int64) {
		mu.Lock()
		defer mu.Unlock()
		maxSent = max(maxSent, sent)
		seenTotal = total
	})
	require.NoError(t, err)
	require.Len(t, refs, 3)

	for i, ref := range refs {
		assert.Equal(t, files[i].Name, ref.OriginalName)
		assert.Equal(t, files[i].Size, ref.Size)
		assert.Equal(t, "https://cdn/"+ref.ID, ref.URL)
		assert.True(t, strings.HasPrefix(ref.ID, "attachments/2026/3/7/"))
	}
	assert.Equal(t, "alpha", b.objects[refs[0].ID])
	assert.Equal(t, "image/png", b.types[refs[1].ID])
	assert.Equal(t, "application/octet-stream", b.types[refs[2].ID])
	assert.Equal(t, int64(12), maxSent)
	assert.Equal(t, int64(12), seenTotal)
}

func TestUploadBatch_FailureRollsBack(t *testing.T) {
	b := newFakeBucket()
	b.failOn = "bad"
	s := newStore(b, Config{Bucket: "club", Concurrency: 1})

	_, err := s.UploadBatch(context.Background(), []models.RawFile{
		models.NewRawFileFromBytes("a.txt", "text/plain", []byte("good")),
		models.NewRawFileFromBytes("b.txt", "text/plain", []byte("bad")),
	}, nil)
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Contains(t, err.Error(), "access denied")
	assert.Empty(t, b.objects, "objects written before the failure are removed")
}

func TestDownloadAndDelete(t *testing.T) {
	b := newFakeBucket()
	b.objects["attachments/2026/1/1/x.pdf"] = "%PDF"
	s := newStore(b, Config{Bucket: "club"})
	dir := t.TempDir()

	p, err := s.Download(context.Background(), "attachments/2026/1/1/x.pdf", "minutes.pdf", dir)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	require.NoError(t, s.Delete(context.Background(), "attachments/2026/1/1/x.pdf"))
	_, err = s.Download(context.Background(), "attachments/2026/1/1/x.pdf", "minutes.pdf", dir)
	require.ErrorIs(t, err, client.ErrNotFound)
}

func TestPing(t *testing.T) {
	b := newFakeBucket()
	s := newStore(b, Config{Bucket: "club"})
	require.NoError(t, s.Ping(context.Background()))

	b.headErr = errors.New("no such bucket")
	require.ErrorIs(t, s.Ping(context.Background()), client.ErrUnavailable)
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)

	s, err := New(context.Background(), Config{
		Bucket: "club", Region: "us-east-1", Endpoint: "http://localhost:9000",
		AccessKey: "minio", SecretKey: "minio123",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, s.cfg.Concurrency)
}
