package schedule

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"delivery-tracker/core/storage"

	"github.com/minio/minio-go/v7"
)

// FileSystem is the place datasets are read from and written to.
// Names are slash-separated and relative to the configured root.
type FileSystem interface {
	// Open returns the content of name, or an error wrapping fs.ErrNotExist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// List returns the base names of the files directly inside dir, sorted.
	List(ctx context.Context, dir string) ([]string, error)
	// WriteFile stores data under name, replacing any previous content.
	WriteFile(ctx context.Context, name string, data []byte) error
}

// NewFileSystem returns the file system selected by cfg.Backend.
func NewFileSystem(cfg Config, client storage.Client, bucket string) (FileSystem, error) {
	switch cfg.Backend {
	case "local", "":
		return &LocalFS{Root: cfg.Root}, nil
	case "s3":
		if client == nil {
			return nil, errors.New("s3 backend requires a storage client")
		}
		return &BucketFS{Client: client, Bucket: bucket, Prefix: cfg.Root}, nil
	default:
		return nil, fmt.Errorf("unsupported schedule backend: %s", cfg.Backend)
	}
}

// LocalFS reads and writes files under a directory.
type LocalFS struct {
	Root string
}

func (l *LocalFS) path(name string) string {
	return filepath.Join(l.Root, filepath.FromSlash(name))
}

func (l *LocalFS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return os.Open(l.path(name))
}

func (l *LocalFS) List(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(l.path(dir))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (l *LocalFS) WriteFile(ctx context.Context, name string, data []byte) error {
	p := l.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// BucketFS reads and writes objects of a storage bucket under a key prefix.
type BucketFS struct {
	Client storage.Client
	Bucket string
	Prefix string
}

func (b *BucketFS) key(name string) string {
	p := strings.Trim(b.Prefix, "/")
	if p == "" || p == "." {
		return strings.TrimPrefix(path.Clean(name), "/")
	}
	return path.Join(p, name)
}

func (b *BucketFS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := b.key(name)
	// GetObject is lazy, so missing objects are detected with a stat first.
	if _, err := b.Client.StatObject(ctx, b.Bucket, key, minio.StatObjectOptions{}); err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	obj, err := b.Client.GetObject(ctx, b.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return obj, nil
}

func (b *BucketFS) List(ctx context.Context, dir string) ([]string, error) {
	prefix := b.key(dir)
	if prefix != "" && prefix != "." {
		prefix += "/"
	} else {
		prefix = ""
	}

	var names []string
	for obj := range b.Client.ListObjects(ctx, b.Bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, path.Base(obj.Key))
	}
	sort.Strings(names)
	return names, nil
}

func (b *BucketFS) WriteFile(ctx context.Context, name string, data []byte) error {
	key := b.key(name)
	_, err := b.Client.PutObject(ctx, b.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeOf(key),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func contentTypeOf(name string) string {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".xlsx":
		return xlsxContentType
	case ".csv":
		return "text/csv"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}
