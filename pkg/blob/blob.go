package blob

import (
	"context"
	"fmt"
	"io"
)

// Store is the file-blob collaborator: content is written under a path-like
// key and addressed afterwards by the returned URL.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Config selects and configures the blob driver from the environment.
type Config struct {
	Driver    string `envconfig:"BLOB_DRIVER" default:"s3"`
	Bucket    string `envconfig:"BLOB_S3_BUCKET"`
	Region    string `envconfig:"BLOB_S3_REGION" default:"us-east-1"`
	Endpoint  string `envconfig:"BLOB_S3_ENDPOINT"`
	PathStyle bool   `envconfig:"BLOB_S3_PATH_STYLE"`
}

// Open selects a Store implementation from Config.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3(ctx, cfg)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}
