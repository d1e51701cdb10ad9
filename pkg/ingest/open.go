package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
)

// Kind names where an input comes from.
type Kind string

const (
	KindFile     Kind = "file"
	KindS3       Kind = "s3"
	KindPostgres Kind = "postgres"
)

// KindOf classifies an input URI.
func KindOf(uri string) Kind {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		return KindS3
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return KindPostgres
	default:
		return KindFile
	}
}

// Input is an opened byte stream with its raw (compressed) size.
type Input struct {
	io.Reader
	Size  int64
	close func() error
}

// Close releases the underlying file mapping or object body.
func (in *Input) Close() error {
	if in.close == nil {
		return nil
	}
	return in.close()
}

// Opener opens files and S3 objects. S3 may be nil when no s3:// inputs
// are used.
type Opener struct {
	S3 ObjectGetter
}

// Open opens uri and transparently decompresses .sz (snappy stream) and
// .snappy (snappy block) inputs.
func (o *Opener) Open(ctx context.Context, uri string) (*Input, error) {
	var (
		in  *Input
		err error
	)
	switch KindOf(uri) {
	case KindS3:
		in, err = o.openS3(ctx, uri)
	case KindFile:
		in, err = openMapped(uri)
	default:
		return nil, fmt.Errorf("%s: not a byte stream source", uri)
	}
	if err != nil {
		return nil, err
	}
	return decompress(uri, in)
}

// openMapped memory-maps a local file.
func openMapped(path string) (*Input, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}
	size := int64(r.Len())
	return &Input{
		Reader: io.NewSectionReader(r, 0, size),
		Size:   size,
		close:  r.Close,
	}, nil
}

func decompress(uri string, in *Input) (*Input, error) {
	switch {
	case strings.HasSuffix(uri, ".sz"):
		return &Input{Reader: snappy.NewReader(in.Reader), Size: in.Size, close: in.Close}, nil
	case strings.HasSuffix(uri, ".snappy"):
		compressed, err := io.ReadAll(in.Reader)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("failed to read %s: %w", uri, err)
		}
		data, err := snappy.Decode(nil, compressed)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("failed to decompress %s: %w", uri, err)
		}
		return &Input{Reader: bytes.NewReader(data), Size: in.Size, close: in.Close}, nil
	default:
		return in, nil
	}
}
