// Package s3store is a file-serving collaborator that writes attachments
// straight to an S3-compatible bucket (AWS S3, MinIO).
package s3store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/clubattach/internal/client/client"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/client/upload"
	"github.com/dmitrijs2005/clubattach/internal/filex"
	"github.com/dmitrijs2005/clubattach/internal/logging"
	"github.com/dmitrijs2005/clubattach/internal/netx"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// objectAPI is the subset of *s3.Client used here.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}

	now = time.Now
)

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicBaseURL serves objects, e.g. a CDN in front of the bucket.
	// Empty means path-style URLs on Endpoint.
	PublicBaseURL string
	// Concurrency bounds parallel puts. Zero means 4.
	Concurrency int
}

type Store struct {
	api objectAPI
	cfg Config
	log logging.Logger
}

var _ client.Client = (*Store)(nil)

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New builds an S3 client from cfg. Static credentials are used when both
// keys are set, the default chain otherwise.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3store: bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newStore(api, cfg, opts...), nil
}

func newStore(api objectAPI, cfg Config, opts ...Option) *Store {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	s := &Store{api: api, cfg: cfg, log: logging.Discard()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ObjectKey returns a fresh key "attachments/YYYY/M/D/<uuid><ext>".
func ObjectKey(name string) string {
	d := now()
	return fmt.Sprintf("attachments/%d/%d/%d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), strings.ToLower(filepath.Ext(name)))
}

func (s *Store) ServeURL(id string) string {
	base := s.cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket
	}
	return strings.TrimRight(base, "/") + "/" + id
}

// ThumbnailURL is the object itself; buckets have no thumbnail service.
func (s *Store) ThumbnailURL(id string, _, _ int) string {
	return s.ServeURL(id)
}

// UploadBatch puts every file concurrently. If any put fails, objects already
// written are deleted and the error is returned.
func (s *Store) UploadBatch(ctx context.Context, files []models.RawFile, progress upload.ProgressFunc) ([]models.AttachmentReference, error) {
	var total int64
	for _, f := range files {
		total += f.Size
	}

	refs := make([]models.AttachmentReference, len(files))
	var sent atomic.Int64

	var mu sync.Mutex
	var written []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, f := range files {
		i, f := i, f
		key := ObjectKey(f.Name)
		g.Go(func() error {
			rc, err := f.Open()
			if err != nil {
				return err
			}
			defer rc.Close()

			var last int64
			body := &netx.ProgressReader{R: rc, OnRead: func(n int64) {
				delta := n - last
				last = n
				v := sent.Add(delta)
				if progress != nil {
					progress(v, total)
				}
			}}

			ct := f.MimeType
			if ct == "" {
				ct = "application/octet-stream"
			}

			_, err = s.api.PutObject(gctx, &s3.PutObjectInput{
				Bucket:             aws.String(s.cfg.Bucket),
				Key:                aws.String(key),
				Body:               body,
				ContentLength:      aws.Int64(f.Size),
				ContentType:        aws.String(ct),
				ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", filex.SafeName(f.Name, "file"))),
			})
			if err != nil {
				return fmt.Errorf("put %s: %w", f.Name, err)
			}

			mu.Lock()
			written = append(written, key)
			mu.Unlock()

			refs[i] = models.AttachmentReference{
				ID:           key,
				OriginalName: f.Name,
				Size:         f.Size,
				MimeType:     f.MimeType,
				URL:          s.ServeURL(key),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.rollback(context.WithoutCancel(ctx), written)
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", client.ErrUnavailable, err)
	}
	return refs, nil
}

func (s *Store) rollback(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			s.log.Error(ctx, "rollback delete failed", "key", k, "err", err)
		}
	}
}

// Download saves the object as dir/name. An empty dir means "download"
// under the working directory.
func (s *Store) Download(ctx context.Context, id, name, dir string) (string, error) {
	dir, err := filex.EnsureDir(dir, "download")
	if err != nil {
		return "", err
	}

	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return "", mapError(err)
	}
	defer out.Body.Close()

	p, _, err := filex.WriteFile(dir, filex.SafeName(name, path.Base(id)), out.Body)
	return p, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(id),
	})
	return mapError(err)
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err != nil {
		return fmt.Errorf("%w: %w", client.ErrUnavailable, err)
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return fmt.Errorf("%w: %w", client.ErrNotFound, err)
	}
	return err
}
