// Package storage provides read access to images held in Azure Blob Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/marlin/pkg/formatting"
	"github.com/JaimeStill/marlin/pkg/lifecycle"
)

// System manages blob storage reads and lifecycle coordination.
type System interface {
	// Start registers a startup hook that verifies the image container is
	// reachable and a readiness check that holds until it is.
	Start(lc *lifecycle.Coordinator) error
	// Read returns the full contents of the blob at key.
	// Returns ErrNotFound if the blob does not exist and ErrTooLarge if it
	// exceeds the configured object size.
	Read(ctx context.Context, key string) ([]byte, error)
	// List returns every blob key under prefix in listing order.
	List(ctx context.Context, prefix string) ([]string, error)
	// ListLimit returns at most limit keys under prefix and reports whether
	// more exist. Paging stops once the limit is reached. A limit below 1
	// lists everything.
	ListLimit(ctx context.Context, prefix string, limit int) ([]string, bool, error)
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

type azure struct {
	client    *azblob.Client
	container string
	pageSize  int32
	maxSize   int64
	logger    *slog.Logger
	ready     atomic.Bool
}

// New creates a storage system from the given configuration.
// It validates the connection string and creates the Azure client
// but does not establish a connection until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		pageSize:  cfg.MaxListSize,
		maxSize:   cfg.MaxObjectSizeBytes(),
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.Require("storage", lifecycle.ReadinessFunc(a.ready.Load))

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil {
			if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("storage container initialization failed", "error", err)
				return
			}
		}

		a.ready.Store(true)
		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Read(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.ContentLength != nil && *resp.ContentLength > a.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, key, formatting.FormatBytes(a.maxSize, 0))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, a.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	if int64(len(data)) > a.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, key, formatting.FormatBytes(a.maxSize, 0))
	}

	a.logger.Debug("blob read", "key", key, "size", formatting.FormatBytes(int64(len(data)), 1))
	return data, nil
}

func (a *azure) List(ctx context.Context, prefix string) ([]string, error) {
	keys, _, err := a.ListLimit(ctx, prefix, 0)
	return keys, err
}

func (a *azure) ListLimit(ctx context.Context, prefix string, limit int) ([]string, bool, error) {
	if strings.Contains(prefix, "..") {
		return nil, false, ErrInvalidKey
	}

	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{
		Prefix:     &prefix,
		MaxResults: pageSize(a.pageSize, limit),
	})

	var keys []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("list blobs %s: %w", prefix, err)
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			if limit > 0 && len(keys) == limit {
				return keys, true, nil
			}
			keys = append(keys, *item.Name)
		}
		if limit > 0 && len(keys) == limit && pager.More() {
			return keys, true, nil
		}
	}

	return keys, false, nil
}

// pageSize requests one key past limit so truncation is detected without
// fetching a further page.
func pageSize(configured int32, limit int) *int32 {
	size := configured
	if limit > 0 && int64(limit)+1 < int64(size) {
		size = int32(limit) + 1
	}
	return &size
}

func (a *azure) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key)

	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s: %w", key, err)
	}

	return true, nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	if utf8.RuneCountInString(key) > maxKeyLength {
		return ErrKeyTooLong
	}
	return nil
}
