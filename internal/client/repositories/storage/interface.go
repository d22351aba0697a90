package storage

import "context"

type Repository interface {
	// Get returns (nil, nil) when the namespace holds no value.
	Get(ctx context.Context, namespace string) ([]byte, error)
	Set(ctx context.Context, namespace string, value []byte) error
	Delete(ctx context.Context, namespace string) error
}
