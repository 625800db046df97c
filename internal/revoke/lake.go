package revoke

import (
	"context"

	"github.com/tidelake/lakeacl/internal/lakesdk"
)

// Lake is the slice of the service surface the revoker needs. Tests
// substitute a fake; production wires the SDK through NewLake.
type Lake interface {
	ResolveAccount(ctx context.Context, name string) (*lakesdk.AccountView, error)
	Status(ctx context.Context, account, path string) (*lakesdk.PathStatus, error)
	List(ctx context.Context, account, path string) ([]lakesdk.Child, error)
	RemoveAclEntries(ctx context.Context, account, path, aces string) (*lakesdk.RemoveAclResponse, error)
}

type sdkLake struct {
	client *lakesdk.Client
}

func NewLake(client *lakesdk.Client) Lake {
	return &sdkLake{client: client}
}

func (l *sdkLake) ResolveAccount(ctx context.Context, name string) (*lakesdk.AccountView, error) {
	return l.client.Accounts.Resolve(ctx, name)
}

func (l *sdkLake) Status(ctx context.Context, account, path string) (*lakesdk.PathStatus, error) {
	return l.client.Store.Status(ctx, account, path)
}

func (l *sdkLake) List(ctx context.Context, account, path string) ([]lakesdk.Child, error) {
	return l.client.Store.List(ctx, account, path)
}

func (l *sdkLake) RemoveAclEntries(ctx context.Context, account, path, aces string) (*lakesdk.RemoveAclResponse, error) {
	return l.client.Store.RemoveAclEntries(ctx, account, path, aces)
}
