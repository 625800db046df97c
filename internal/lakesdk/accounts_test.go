package lakesdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/accounts/view", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("name") {
		case "tidelake-prod":
			json.NewEncoder(w).Encode(&AccountView{
				Name:         "tidelake-prod",
				StoreAccount: "lakestore-prod",
				Location:     "eastus2",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(&APIError{Code: CodeAccountNotFound, Message: "no such account"})
		}
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	view, err := client.Accounts.Resolve(context.Background(), "tidelake-prod")
	require.NoError(t, err)
	assert.Equal(t, "lakestore-prod", view.StoreAccount)

	_, err = client.Accounts.Resolve(context.Background(), "who")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeAccountNotFound))

	_, err = client.Accounts.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
