package awsops

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type s3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
}

// CleanupResult records what one cleanup run did.
type CleanupResult struct {
	BucketsDeleted []string
	ObjectsDeleted int
	SecretsDeleted []string
	Skipped        []string
	Errors         []error
}

// Cleaner tears down project resources: S3 buckets and secrets whose names
// carry the project prefix. Steps run in dependency order and failures in
// one resource never stop the rest of the run.
type Cleaner struct {
	s3       s3API
	secrets  *SecretsClient
	prefix   string
	dryRun   bool
	logger   *log.Logger
}

// NewCleaner creates a cleanup runner for resources named with prefix.
func NewCleaner(ctx context.Context, region, prefix string, dryRun bool) (*Cleaner, error) {
	if prefix == "" {
		return nil, fmt.Errorf("cleanup prefix cannot be empty, refusing to match all resources")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &Cleaner{
		s3:      s3.NewFromConfig(cfg),
		secrets: NewSecretsClientWithAPI(secretsmanager.NewFromConfig(cfg)),
		prefix:  prefix,
		dryRun:  dryRun,
		logger:  log.New(os.Stdout, "[Cleanup] ", log.LstdFlags),
	}, nil
}

// NewCleanerWithClients injects custom clients (tests).
func NewCleanerWithClients(s3Client s3API, secrets *SecretsClient, prefix string, dryRun bool) (*Cleaner, error) {
	if prefix == "" {
		return nil, fmt.Errorf("cleanup prefix cannot be empty, refusing to match all resources")
	}
	return &Cleaner{
		s3:      s3Client,
		secrets: secrets,
		prefix:  prefix,
		dryRun:  dryRun,
		logger:  log.New(os.Stdout, "[Cleanup] ", log.LstdFlags),
	}, nil
}

// Run deletes matching S3 buckets (emptying them first) and then matching
// secrets. In dry-run mode it only reports what would be removed.
func (c *Cleaner) Run(ctx context.Context) (*CleanupResult, error) {
	result := &CleanupResult{}

	c.cleanupBuckets(ctx, result)
	c.cleanupSecrets(ctx, result)

	c.logger.Printf("cleanup done: %d bucket(s), %d object(s), %d secret(s), %d error(s)",
		len(result.BucketsDeleted), result.ObjectsDeleted, len(result.SecretsDeleted), len(result.Errors))

	if len(result.Errors) > 0 {
		return result, fmt.Errorf("cleanup finished with %d error(s)", len(result.Errors))
	}
	return result, nil
}

func (c *Cleaner) cleanupBuckets(ctx context.Context, result *CleanupResult) {
	if c.s3 == nil {
		return
	}

	buckets, err := c.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("list buckets: %w", err))
		return
	}

	for _, bucket := range buckets.Buckets {
		if bucket.Name == nil {
			continue
		}
		name := *bucket.Name
		if !strings.HasPrefix(name, c.prefix) {
			result.Skipped = append(result.Skipped, "s3://"+name)
			continue
		}

		if c.dryRun {
			c.logger.Printf("dry-run: would empty and delete s3://%s", name)
			result.BucketsDeleted = append(result.BucketsDeleted, name)
			continue
		}

		deleted, err := c.emptyBucket(ctx, name)
		result.ObjectsDeleted += deleted
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("empty bucket %s: %w", name, err))
			continue
		}

		if _, err := c.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(name)}); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("delete bucket %s: %w", name, err))
			continue
		}
		c.logger.Printf("deleted s3://%s (%d objects)", name, deleted)
		result.BucketsDeleted = append(result.BucketsDeleted, name)
	}
}

func (c *Cleaner) emptyBucket(ctx context.Context, bucket string) (int, error) {
	deleted := 0
	var token *string
	for {
		out, err := c.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			ContinuationToken: token,
		})
		if err != nil {
			return deleted, err
		}

		for _, object := range out.Contents {
			if object.Key == nil {
				continue
			}
			_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(bucket),
				Key:    object.Key,
			})
			if err != nil {
				return deleted, err
			}
			deleted++
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			return deleted, nil
		}
		token = out.NextContinuationToken
	}
}

func (c *Cleaner) cleanupSecrets(ctx context.Context, result *CleanupResult) {
	if c.secrets == nil || c.secrets.api == nil {
		return
	}

	names, err := c.secrets.ListSecretNames(ctx)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return
	}

	for _, name := range names {
		if !strings.HasPrefix(name, c.prefix) {
			result.Skipped = append(result.Skipped, "secret:"+name)
			continue
		}

		if c.dryRun {
			c.logger.Printf("dry-run: would delete secret %s", name)
			result.SecretsDeleted = append(result.SecretsDeleted, name)
			continue
		}

		if err := c.secrets.DeleteSecret(ctx, name); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		c.logger.Printf("deleted secret %s", name)
		result.SecretsDeleted = append(result.SecretsDeleted, name)
	}
}
