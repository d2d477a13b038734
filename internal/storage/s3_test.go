package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 is an in-memory s3API with prefix listing and pagination.
type fakeS3 struct {
	objects  map[string]map[string][]byte // bucket -> key -> body
	pageSize int
	listErr  error
	getErr   error
	putErr   error
	headErr  error
	puts     map[string][]byte // bucket/key -> body written via PutObject
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects: make(map[string]map[string][]byte),
		puts:    make(map[string][]byte),
	}
}

func (f *fakeS3) add(bucket, key string, body []byte) {
	if f.objects[bucket] == nil {
		f.objects[bucket] = make(map[string][]byte)
	}
	f.objects[bucket][key] = body
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.objects[aws.ToString(in.Bucket)] {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := len(keys)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	out := &s3.ListObjectsV2Output{}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	truncated := end < len(keys)
	out.IsTruncated = aws.Bool(truncated)
	if truncated {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[aws.ToString(in.Bucket)][aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(body)))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestObjectStore_Fetch_ListingOrder(t *testing.T) {
	fake := newFakeS3()
	fake.add("src", "2022-01-03/2022-01-03_BINS_XETR09.csv", []byte("a"))
	fake.add("src", "2022-01-03/2022-01-03_BINS_XETR10.csv", []byte("b"))
	fake.add("src", "2022-01-03/2022-01-03_BINS_XETR11.csv", []byte("c"))
	fake.add("src", "2022-01-04/2022-01-04_BINS_XETR09.csv", []byte("other day"))

	store := NewObjectStore(fake, "src", "dst", "report.parquet", 2)
	got, err := store.Fetch(context.Background(), "2022-01-03")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("batches: want 3 got %d", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if string(got[i]) != want {
			t.Fatalf("batch %d: want %q got %q", i, want, got[i])
		}
	}
}

func TestObjectStore_Fetch_Paginated(t *testing.T) {
	fake := newFakeS3()
	fake.pageSize = 2
	for _, k := range []string{"2022-01-03/a.csv", "2022-01-03/b.csv", "2022-01-03/c.csv", "2022-01-03/d.csv", "2022-01-03/e.csv"} {
		fake.add("src", k, []byte(k))
	}
	store := NewObjectStore(fake, "src", "dst", "report.parquet", 1)
	got, err := store.Fetch(context.Background(), "2022-01-03")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("batches: want 5 got %d", len(got))
	}
}

func TestObjectStore_Fetch_AbsentPartition(t *testing.T) {
	store := NewObjectStore(newFakeS3(), "src", "dst", "report.parquet", 1)
	got, err := store.Fetch(context.Background(), "2022-01-09")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("absent partition must yield no batches, got %d", len(got))
	}
}

func TestObjectStore_Fetch_Errors(t *testing.T) {
	fake := newFakeS3()
	fake.listErr = errors.New("list boom")
	store := NewObjectStore(fake, "src", "dst", "report.parquet", 1)
	if _, err := store.Fetch(context.Background(), "2022-01-03"); err == nil {
		t.Fatalf("expected list error")
	}

	fake = newFakeS3()
	fake.add("src", "2022-01-03/a.csv", []byte("a"))
	fake.getErr = errors.New("get boom")
	store = NewObjectStore(fake, "src", "dst", "report.parquet", 1)
	if _, err := store.Fetch(context.Background(), "2022-01-03"); err == nil {
		t.Fatalf("expected get error")
	}
}

func TestObjectStore_StoreAndFetchReport(t *testing.T) {
	fake := newFakeS3()
	store := NewObjectStore(fake, "src", "dst", "report.parquet", 1)

	if err := store.Store(context.Background(), "report.parquet", []byte("payload")); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(fake.puts["dst/report.parquet"]) != "payload" {
		t.Fatalf("payload not written to target bucket: %v", fake.puts)
	}

	fake.add("dst", "report.parquet", []byte("payload"))
	got, err := store.FetchReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("report round-trip: got %q", got)
	}
}

func TestObjectStore_Ping(t *testing.T) {
	fake := newFakeS3()
	store := NewObjectStore(fake, "src", "dst", "report.parquet", 1)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	fake.headErr = errors.New("no bucket")
	if err := store.Ping(context.Background()); err == nil {
		t.Fatalf("expected head error")
	}
}
