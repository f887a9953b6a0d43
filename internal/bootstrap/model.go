package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"photolabel/internal/artifact"
	"photolabel/internal/config"
	"photolabel/internal/vision"
)

// NewAcquirer picks the artifact fetcher named by cfg.Source.
func NewAcquirer(cfg config.ModelConfig, logger *slog.Logger) (*artifact.Acquirer, error) {
	var fetcher artifact.Fetcher
	switch cfg.Source {
	case "http":
		fetcher = artifact.NewHTTPFetcher(cfg.HTTP.URLTemplate, time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second)
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("model source s3 requires a bucket")
		}
		client := artifact.NewS3Client(artifact.S3Options{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		fetcher = artifact.NewS3Fetcher(client, cfg.S3.Bucket, cfg.S3.Prefix)
	default:
		return nil, fmt.Errorf("unknown model source %q", cfg.Source)
	}
	return artifact.NewAcquirer(fetcher, logger), nil
}

// FetchArtifacts makes sure the model and its labels file are on local disk.
func FetchArtifacts(ctx context.Context, cfg config.ModelConfig, acquirer *artifact.Acquirer) error {
	if _, err := acquirer.Ensure(ctx, cfg.ArtifactID, cfg.Path); err != nil {
		return fmt.Errorf("model artifact: %w", err)
	}
	if _, err := acquirer.Ensure(ctx, cfg.LabelsArtifactID, cfg.LabelsPath); err != nil {
		return fmt.Errorf("labels artifact: %w", err)
	}
	return nil
}

// ModelLoader acquires the artifacts on first use and builds the ONNX classifier from them.
func ModelLoader(cfg *config.Config, acquirer *artifact.Acquirer, logger *slog.Logger) vision.Loader {
	return func(ctx context.Context) (vision.Model, error) {
		if err := FetchArtifacts(ctx, cfg.Model, acquirer); err != nil {
			return nil, err
		}
		logger.Info("loading classifier", "model", cfg.Model.Path, "labels", cfg.Model.LabelsPath)
		return vision.LoadClassifier(cfg.Model.Path, cfg.Model.LabelsPath, vision.ONNXOptions{
			SharedLibPath: cfg.Vision.ONNXSharedLibPath,
			ImageSize:     cfg.Vision.ImageSize,
			ApplySoftmax:  cfg.Vision.ApplySoftmax,
		})
	}
}
