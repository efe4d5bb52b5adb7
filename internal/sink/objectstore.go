package sink

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/jfmyers9/albumlog/internal/album"
	"github.com/jfmyers9/albumlog/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

const jsonLinesContentType = "application/x-ndjson"

// ObjectStore writes the tables as JSON-lines objects in an S3 compatible
// bucket. Each PutObject replaces its object whole.
type ObjectStore struct {
	client *minio.Client
	bucket string
	prefix string
	logger zerolog.Logger
}

// OpenObjectStore connects to the object store and creates the bucket
// when it does not exist yet.
func OpenObjectStore(ctx context.Context, cfg config.ObjectStoreConfig, logger zerolog.Logger) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, album.SinkUnavailable("open object store", errMissing("object_store.endpoint"))
	}
	if cfg.Bucket == "" {
		return nil, album.SinkUnavailable("open object store", errMissing("object_store.bucket"))
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, album.SinkUnavailable("create object store client", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, album.SinkUnavailable("check bucket "+cfg.Bucket, err)
	}

	log := logger.With().Str("sink", "s3").Str("bucket", cfg.Bucket).Logger()
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, album.SinkUnavailable("create bucket "+cfg.Bucket, err)
		}
		log.Info().Msg("created bucket")
	}

	return &ObjectStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: log,
	}, nil
}

type errMissing string

func (e errMissing) Error() string {
	return string(e) + " is not set"
}

// objectKey joins prefix and name with exactly one slash.
func objectKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// WriteCurrent replaces the current_album object.
func (s *ObjectStore) WriteCurrent(ctx context.Context, current album.CurrentNormalized) error {
	var buf bytes.Buffer
	if err := encodeCurrent(&buf, current); err != nil {
		return album.SinkUnavailable("encode "+CurrentFile, err)
	}
	return s.put(ctx, CurrentFile, &buf)
}

// WriteHistory replaces the albums object.
func (s *ObjectStore) WriteHistory(ctx context.Context, rows []album.HistoryRow) error {
	var buf bytes.Buffer
	if err := encodeHistory(&buf, rows); err != nil {
		return album.SinkUnavailable("encode "+HistoryFile, err)
	}
	if err := s.put(ctx, HistoryFile, &buf); err != nil {
		return err
	}
	s.logger.Debug().Int("rows", len(rows)).Msg("wrote history")
	return nil
}

func (s *ObjectStore) put(ctx context.Context, name string, buf *bytes.Buffer) error {
	key := objectKey(s.prefix, name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), minio.PutObjectOptions{
		ContentType: jsonLinesContentType,
	})
	if err != nil {
		return album.SinkUnavailable("put "+key, err)
	}
	return nil
}

// ReadAll downloads both objects.
func (s *ObjectStore) ReadAll(ctx context.Context) (album.CurrentNormalized, []album.HistoryRow, error) {
	cur, err := s.get(ctx, CurrentFile)
	if err != nil {
		return album.CurrentNormalized{}, nil, err
	}
	current, err := decodeCurrent(bytes.NewReader(cur))
	if err != nil {
		return album.CurrentNormalized{}, nil, err
	}

	hist, err := s.get(ctx, HistoryFile)
	if err != nil {
		return album.CurrentNormalized{}, nil, err
	}
	rows, err := decodeHistory(bytes.NewReader(hist))
	if err != nil {
		return album.CurrentNormalized{}, nil, err
	}

	return current, rows, nil
}

func (s *ObjectStore) get(ctx context.Context, name string) ([]byte, error) {
	key := objectKey(s.prefix, name)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, album.SinkUnavailable("get "+key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNoData
		}
		return nil, album.SinkUnavailable("read "+key, err)
	}
	return data, nil
}

// Close releases nothing; the client holds no open connections.
func (s *ObjectStore) Close() error {
	return nil
}
