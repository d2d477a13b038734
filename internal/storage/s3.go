// Package storage provides the object-store boundary of the pipeline: the
// partition batch loader, the report publisher, and the Parquet codec of
// the published report.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

// BatchLoader fetches the raw batches of one partition. A missing or absent
// partition yields an empty slice, not an error.
type BatchLoader interface {
	Fetch(ctx context.Context, partitionKey string) ([][]byte, error)
}

// ReportPublisher stores the serialized report under a fixed key. Each run
// overwrites the previous artifact; there is no per-run versioning.
type ReportPublisher interface {
	Store(ctx context.Context, key string, body []byte) error
}

// ReportSource reads the published report back, used by the API mode.
type ReportSource interface {
	FetchReport(ctx context.Context) ([]byte, error)
}

// s3API is the S3 client subset the store uses; tests substitute a fake.
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// ObjectStore implements BatchLoader, ReportPublisher and ReportSource
// against S3-compatible storage.
type ObjectStore struct {
	client       s3API
	sourceBucket string
	targetBucket string
	reportKey    string
	parallel     int
}

var _ BatchLoader = (*ObjectStore)(nil)
var _ ReportPublisher = (*ObjectStore)(nil)
var _ ReportSource = (*ObjectStore)(nil)

// NewObjectStore creates an ObjectStore.
//
// Parameters:
//   - client: S3 client (or compatible endpoint).
//   - sourceBucket: bucket holding the date-partitioned trading files.
//   - targetBucket: bucket the report is published to and read from.
//   - reportKey: fixed key of the report object.
//   - parallel: concurrent object gets per partition (0 = CPU count).
func NewObjectStore(client s3API, sourceBucket, targetBucket, reportKey string, parallel int) *ObjectStore {
	if parallel < 1 {
		parallel = runtime.NumCPU()
	}
	return &ObjectStore{
		client:       client,
		sourceBucket: sourceBucket,
		targetBucket: targetBucket,
		reportKey:    reportKey,
		parallel:     parallel,
	}
}

// Fetch lists all objects under the partition key prefix and downloads them
// with bounded parallelism. Results come back in listing order; an absent
// partition returns an empty slice. Any list or get failure aborts.
func (s *ObjectStore) Fetch(ctx context.Context, partitionKey string) ([][]byte, error) {
	keys, err := s.listKeys(ctx, partitionKey)
	if err != nil {
		return nil, fmt.Errorf("list partition %s: %w", partitionKey, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	batches := make([][]byte, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)

	for i, key := range keys {
		g.Go(func() error {
			b, err := s.getObject(gctx, s.sourceBucket, key)
			if err != nil {
				return fmt.Errorf("get %s: %w", key, err)
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// Store uploads the report body under the fixed key in the target bucket.
func (s *ObjectStore) Store(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.targetBucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", s.targetBucket, key, err)
	}
	return nil
}

// FetchReport downloads the published report object.
func (s *ObjectStore) FetchReport(ctx context.Context) ([]byte, error) {
	b, err := s.getObject(ctx, s.targetBucket, s.reportKey)
	if err != nil {
		return nil, fmt.Errorf("get report %s/%s: %w", s.targetBucket, s.reportKey, err)
	}
	return b, nil
}

// Ping checks that the target bucket is reachable; used by the readiness probe.
func (s *ObjectStore) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.targetBucket),
	})
	return err
}

func (s *ObjectStore) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.sourceBucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	return keys, nil
}

func (s *ObjectStore) getObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = out.Body.Close() }()
	return io.ReadAll(out.Body)
}
