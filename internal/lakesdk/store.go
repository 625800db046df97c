package lakesdk

import (
	"context"

	"github.com/imroc/req/v3"

	"github.com/tidelake/lakeacl/internal/lake"
)

const (
	v1StoreStatus    = "/api/v1/store/status"
	v1StoreList      = "/api/v1/store/list"
	v1StoreAclRemove = "/api/v1/store/acl/remove"
)

// PathStatus is the store's answer for a single path. Exists is false
// for absent paths; the call itself does not fail on them.
type PathStatus struct {
	Account string        `json:"account"`
	Path    string        `json:"path"`
	Exists  bool          `json:"exists"`
	Type    lake.NodeType `json:"type,omitempty"`
}

// Child is one directory entry from a list call.
type Child struct {
	Name string        `json:"name"`
	Type lake.NodeType `json:"type"`
}

type ListResponse struct {
	Account string  `json:"account"`
	Path    string  `json:"path"`
	Entries []Child `json:"entries"`
}

type RemoveAclRequest struct {
	Account string `json:"account"`
	Path    string `json:"path"`
	Aces    string `json:"aces"`
}

// RemoveAclResponse reports how many entries the store actually
// dropped. Removed is zero when none of the entries were present.
type RemoveAclResponse struct {
	Path    string `json:"path"`
	Removed int    `json:"removed"`
}

type StoreAPI struct {
	client *req.Client
}

func newStoreAPI(client *req.Client) *StoreAPI {
	return &StoreAPI{client: client}
}

// Status checks a single path on the store account.
func (s *StoreAPI) Status(ctx context.Context, account, path string) (*PathStatus, error) {
	if account == "" || path == "" {
		return nil, ErrInvalidRequest
	}

	var status PathStatus
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("account", account).
		SetQueryParam("path", lake.CleanPath(path)).
		SetSuccessResult(&status).
		Get(v1StoreStatus)
	if err := handleAPIError(res, err, "store status"); err != nil {
		return nil, err
	}
	return &status, nil
}

// List returns the immediate children of a directory path.
func (s *StoreAPI) List(ctx context.Context, account, path string) ([]Child, error) {
	if account == "" || path == "" {
		return nil, ErrInvalidRequest
	}

	var listed ListResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("account", account).
		SetQueryParam("path", lake.CleanPath(path)).
		SetSuccessResult(&listed).
		Get(v1StoreList)
	if err := handleAPIError(res, err, "store list"); err != nil {
		return nil, err
	}
	return listed.Entries, nil
}

// RemoveAclEntries strips the given ACE spec from one path. The store
// treats entries that are not present as a no-op, so calling this
// twice for the same path is safe.
func (s *StoreAPI) RemoveAclEntries(ctx context.Context, account, path, aces string) (*RemoveAclResponse, error) {
	if account == "" || path == "" || aces == "" {
		return nil, ErrInvalidRequest
	}

	var removed RemoveAclResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(&RemoveAclRequest{
			Account: account,
			Path:    lake.CleanPath(path),
			Aces:    aces,
		}).
		SetSuccessResult(&removed).
		Post(v1StoreAclRemove)
	if err := handleAPIError(res, err, "remove acl entries"); err != nil {
		return nil, err
	}
	return &removed, nil
}
