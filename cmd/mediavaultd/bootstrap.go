package main

import (
	"context"
	"fmt"
	"path/filepath"

	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/deps"
	"mediavault/internal/ingest"
	"mediavault/internal/journal"
	"mediavault/internal/services/s3store"
	"mediavault/internal/services/ytdlp"
)

// buildServices wires the ingest pipeline: AWS clients, the tool resolver,
// the yt-dlp downloader, and the batch journal.
func buildServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ingest.Service, *journal.Store, error) {
	awsCfg, err := buildAWSConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := cfg.AWS.Endpoint
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	uploader, err := s3store.New(s3Client, cfg.AWS.Bucket, cfg.AWS.Region, endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("build storage client: %w", err)
	}

	ddbClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	persister, err := catalog.NewStore(ddbClient, cfg.AWS.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("build catalog store: %w", err)
	}

	store, err := journal.Open(filepath.Join(cfg.Paths.LogDir, "journal.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}

	resolver := deps.NewResolver(cfg.Tool.Path, cfg.Paths.ToolCacheDir, cfg.Tool.DownloadURL, logger)
	svc := ingest.NewService(
		cfg.Paths.WorkDir,
		resolver,
		ytdlp.New(),
		uploader,
		persister,
		ingest.NewLogReporter(logger),
		logger,
		ingest.WithRecorder(store),
	)
	return svc, store, nil
}

func buildAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWS.Region),
	}
	if cfg.AWS.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}
