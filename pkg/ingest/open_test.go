package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEdges = "alice,bob\nbob,carol\n"

// fakeS3 serves objects from memory
type fakeS3 struct {
	objects map[string]string
	calls   []string
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	f.calls = append(f.calls, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readAll(t *testing.T, o *Opener, uri string) (string, int64) {
	t.Helper()

	in, err := o.Open(context.Background(), uri)
	require.NoError(t, err)
	defer in.Close()

	data, err := io.ReadAll(in)
	require.NoError(t, err)
	return string(data), in.Size
}

// TestKindOf tests URI classification
func TestKindOf(t *testing.T) {
	assert.Equal(t, KindS3, KindOf("s3://bucket/edges.csv"))
	assert.Equal(t, KindPostgres, KindOf("postgres://user@host/db"))
	assert.Equal(t, KindPostgres, KindOf("postgresql://host/db"))
	assert.Equal(t, KindFile, KindOf("/tmp/edges.csv"))
}

// TestParseS3URI tests bucket and key extraction
func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://snapshots/2024/01/edges.csv")
	require.NoError(t, err)
	assert.Equal(t, "snapshots", bucket)
	assert.Equal(t, "2024/01/edges.csv", key)

	for _, bad := range []string{"s3://bucket", "s3:///key", "http://bucket/key"} {
		_, _, err := ParseS3URI(bad)
		assert.Error(t, err, bad)
	}
}

// TestOpen_LocalFile tests memory-mapped reads
func TestOpen_LocalFile(t *testing.T) {
	path := writeFile(t, "edges.csv", []byte(sampleEdges))

	data, size := readAll(t, &Opener{}, path)
	assert.Equal(t, sampleEdges, data)
	assert.Equal(t, int64(len(sampleEdges)), size)

	_, err := (&Opener{}).Open(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

// TestOpen_Snappy tests both snappy encodings
func TestOpen_Snappy(t *testing.T) {
	var stream bytes.Buffer
	w := snappy.NewBufferedWriter(&stream)
	_, err := w.Write([]byte(sampleEdges))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	framed := writeFile(t, "edges.csv.sz", stream.Bytes())
	data, _ := readAll(t, &Opener{}, framed)
	assert.Equal(t, sampleEdges, data)

	block := writeFile(t, "edges.csv.snappy", snappy.Encode(nil, []byte(sampleEdges)))
	data, _ = readAll(t, &Opener{}, block)
	assert.Equal(t, sampleEdges, data)

	corrupt := writeFile(t, "bad.snappy", []byte("not snappy at all"))
	_, err = (&Opener{}).Open(context.Background(), corrupt)
	assert.Error(t, err)
}

// TestOpen_S3 tests reading objects through the S3 client
func TestOpen_S3(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"snapshots/a/edges.csv": sampleEdges}}
	o := &Opener{S3: fake}

	data, size := readAll(t, o, "s3://snapshots/a/edges.csv")
	assert.Equal(t, sampleEdges, data)
	assert.Equal(t, int64(len(sampleEdges)), size)
	assert.Equal(t, []string{"snapshots/a/edges.csv"}, fake.calls)

	_, err := o.Open(context.Background(), "s3://snapshots/missing.csv")
	assert.Error(t, err)

	_, err = (&Opener{}).Open(context.Background(), "s3://snapshots/a/edges.csv")
	assert.ErrorContains(t, err, "no S3 client")
}

// TestOpen_Postgres tests that database URIs are not byte streams
func TestOpen_Postgres(t *testing.T) {
	_, err := (&Opener{}).Open(context.Background(), "postgres://localhost/db")
	assert.Error(t, err)
}

// TestRedact tests credential removal
func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://tsm:xxxxx@db/graph", redact("postgres://tsm:secret@db/graph"))
	assert.Equal(t, "/tmp/edges.csv", redact("/tmp/edges.csv"))
}
