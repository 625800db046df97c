package lakesdk

import (
	"context"

	"github.com/imroc/req/v3"
)

const v1AccountsView = "/api/v1/accounts/view"

// AccountView describes an analytics account and the lake-store
// account backing it.
type AccountView struct {
	Name         string `json:"name"`
	StoreAccount string `json:"storeAccount"`
	Location     string `json:"location,omitempty"`
}

type AccountsAPI struct {
	client *req.Client
}

func newAccountsAPI(client *req.Client) *AccountsAPI {
	return &AccountsAPI{client: client}
}

// Resolve looks up the analytics account and returns its view,
// including the backing store account name.
func (a *AccountsAPI) Resolve(ctx context.Context, name string) (*AccountView, error) {
	if name == "" {
		return nil, ErrInvalidRequest
	}

	var view AccountView
	res, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("name", name).
		SetSuccessResult(&view).
		Get(v1AccountsView)
	if err := handleAPIError(res, err, "resolve account"); err != nil {
		return nil, err
	}
	return &view, nil
}
