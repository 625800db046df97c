package lakesim

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidelake/lakeacl/internal/lake"
	"github.com/tidelake/lakeacl/internal/lakesdk"
	"github.com/tidelake/lakeacl/internal/revoke"
	"github.com/tidelake/lakeacl/internal/session"
	"github.com/tidelake/lakeacl/internal/tasks"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := &Config{
		DBPath:     filepath.Join(t.TempDir(), "sim.db"),
		AuthSecret: "test-secret",
		TokenTTL:   time.Hour,
		Rate:       "10000-M", // tests share one limiter bucket
	}
	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Store().Close() })

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func seedAccount(t *testing.T, s *Server) {
	t.Helper()
	require.NoError(t, s.Store().UpsertAccount(context.Background(), &Account{
		Name:         "tidelake-dev",
		StoreAccount: "lakestore-dev",
		Location:     "eastus2",
		Principal:    "svc-acl-admin",
		AccessKey:    "dev-key",
	}))
}

func login(t *testing.T, url string) *lakesdk.Client {
	t.Helper()
	token, err := lakesdk.ExchangeKey(context.Background(), url, &lakesdk.TokenRequest{
		Account: "tidelake-dev",
		Key:     "dev-key",
	})
	require.NoError(t, err)

	client, err := lakesdk.New(url, lakesdk.WithToken(token.AccessToken))
	require.NoError(t, err)
	return client
}

func TestAuthFlow(t *testing.T) {
	s, srv := newTestServer(t)
	seedAccount(t, s)

	_, err := lakesdk.ExchangeKey(context.Background(), srv.URL, &lakesdk.TokenRequest{
		Account: "tidelake-dev",
		Key:     "wrong",
	})
	require.Error(t, err)
	assert.True(t, lakesdk.IsCode(err, lakesdk.CodeBadCredentials))

	client := login(t, srv.URL)

	view, err := client.Accounts.Resolve(context.Background(), "tidelake-dev")
	require.NoError(t, err)
	assert.Equal(t, "lakestore-dev", view.StoreAccount)
	assert.Equal(t, "eastus2", view.Location)

	// Tokens are pinned to their account.
	_, err = client.Accounts.Resolve(context.Background(), "tidelake-prod")
	require.Error(t, err)
	assert.True(t, lakesdk.IsCode(err, lakesdk.CodeAccessDenied))

	// No token at all.
	anon, err := lakesdk.New(srv.URL)
	require.NoError(t, err)
	_, err = anon.Store.Status(context.Background(), "lakestore-dev", "/")
	require.Error(t, err)
	assert.True(t, lakesdk.IsCode(err, lakesdk.CodeInvalidToken))
}

func TestStoreSurface(t *testing.T) {
	s, srv := newTestServer(t)
	seedAccount(t, s)
	ctx := context.Background()

	require.NoError(t, s.Store().EnsureDir(ctx, "lakestore-dev", "/system/jobservice"))
	require.NoError(t, s.Store().CreateFile(ctx, "lakestore-dev", "/system/jobservice/manifest.json"))
	require.NoError(t, s.Store().AddAce(ctx, &Ace{
		StoreAccount: "lakestore-dev", Path: "/system/jobservice",
		Scope: "default", EntityType: "user", Qualifier: "jane", Perms: "rwx",
	}))
	require.NoError(t, s.Store().AddAce(ctx, &Ace{
		StoreAccount: "lakestore-dev", Path: "/system/jobservice",
		Scope: "access", EntityType: "user", Qualifier: "jane", Perms: "rwx",
	}))

	client := login(t, srv.URL)

	status, err := client.Store.Status(ctx, "lakestore-dev", "/system/jobservice")
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.Equal(t, lake.NodeDirectory, status.Type)

	status, err = client.Store.Status(ctx, "lakestore-dev", "/absent")
	require.NoError(t, err)
	assert.False(t, status.Exists)

	entries, err := client.Store.List(ctx, "lakestore-dev", "/system/jobservice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manifest.json", entries[0].Name)
	assert.Equal(t, lake.NodeFile, entries[0].Type)

	_, err = client.Store.List(ctx, "lakestore-dev", "/system/jobservice/manifest.json")
	require.Error(t, err)
	assert.True(t, lakesdk.IsCode(err, lakesdk.CodeNotADirectory))

	_, err = client.Store.List(ctx, "lakestore-dev", "/absent")
	require.Error(t, err)
	assert.True(t, lakesdk.IsCode(err, lakesdk.CodePathNotFound))

	spec := lake.RemovalSpec(lake.Entity{ID: "jane", Type: lake.User}, true)
	removed, err := client.Store.RemoveAclEntries(ctx, "lakestore-dev", "/system/jobservice", spec)
	require.NoError(t, err)
	assert.Equal(t, 2, removed.Removed)

	removed, err = client.Store.RemoveAclEntries(ctx, "lakestore-dev", "/system/jobservice", spec)
	require.NoError(t, err)
	assert.Zero(t, removed.Removed, "re-removal is a remote no-op")

	_, err = client.Store.RemoveAclEntries(ctx, "lakestore-dev", "/absent", spec)
	require.Error(t, err)
	assert.True(t, lakesdk.IsCode(err, lakesdk.CodePathNotFound))
}

// The write endpoints are lakesim-only plumbing, so they are driven
// with plain HTTP here rather than the SDK.
func TestMkdirAndCreateEndpoints(t *testing.T) {
	s, srv := newTestServer(t)
	seedAccount(t, s)

	token, err := lakesdk.ExchangeKey(context.Background(), srv.URL, &lakesdk.TokenRequest{
		Account: "tidelake-dev",
		Key:     "dev-key",
	})
	require.NoError(t, err)

	post := func(path string, body any) *http.Response {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req, err := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(data))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := post("/api/v1/store/mkdir", PathRequest{Account: "lakestore-dev", Path: "/data/in"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = post("/api/v1/store/create", PathRequest{Account: "lakestore-dev", Path: "/data/in/part-0.csv"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Creating a file over a directory is a conflict.
	resp = post("/api/v1/store/create", PathRequest{Account: "lakestore-dev", Path: "/data/in"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Foreign store accounts are rejected.
	resp = post("/api/v1/store/mkdir", PathRequest{Account: "lakestore-other", Path: "/x"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	node, err := s.Store().NodeAt(context.Background(), "lakestore-dev", "/data/in/part-0.csv")
	require.NoError(t, err)
	assert.Equal(t, "FILE", node.Type)
}

func TestGetAclEndpoint(t *testing.T) {
	s, srv := newTestServer(t)
	seedAccount(t, s)
	ctx := context.Background()

	require.NoError(t, s.Store().EnsureDir(ctx, "lakestore-dev", "/d"))
	require.NoError(t, s.Store().AddAce(ctx, &Ace{
		StoreAccount: "lakestore-dev", Path: "/d",
		Scope: "access", EntityType: "group", Qualifier: "analysts", Perms: "r-x",
	}))

	token, err := lakesdk.ExchangeKey(ctx, srv.URL, &lakesdk.TokenRequest{
		Account: "tidelake-dev",
		Key:     "dev-key",
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/store/acl?account=lakestore-dev&path=/d", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var acl AclResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&acl))
	require.Len(t, acl.Aces, 1)
	assert.Equal(t, AceView{Scope: "access", Type: "group", Qualifier: "analysts", Perms: "r-x"}, acl.Aces[0])
}

// Full client-against-service revocation: seed a tree, run the real
// revoker through the real SDK, then check the database.
func TestEndToEndRevocation(t *testing.T) {
	s, srv := newTestServer(t)
	seedAccount(t, s)
	ctx := context.Background()
	store := s.Store()

	dirs := []string{
		"/system/jobservice/jobs/Usql",
		"/system/jobservice/jobs/Usql/archive",
	}
	files := []string{
		"/system/jobservice/jobs/Usql/job-001.usql",
		"/system/jobservice/jobs/Usql/archive/run.log",
	}
	for _, d := range dirs {
		require.NoError(t, store.EnsureDir(ctx, "lakestore-dev", d))
	}
	for _, f := range files {
		require.NoError(t, store.CreateFile(ctx, "lakestore-dev", f))
	}

	janeDirs := append(lake.WellKnownPaths(), "/system/jobservice/jobs/Usql/archive")
	for _, d := range janeDirs {
		for _, scope := range []string{"access", "default"} {
			require.NoError(t, store.AddAce(ctx, &Ace{
				StoreAccount: "lakestore-dev", Path: d,
				Scope: scope, EntityType: "user", Qualifier: "jane", Perms: "rwx",
			}))
		}
	}
	for _, f := range files {
		require.NoError(t, store.AddAce(ctx, &Ace{
			StoreAccount: "lakestore-dev", Path: f,
			Scope: "access", EntityType: "user", Qualifier: "jane", Perms: "rw-",
		}))
	}
	// Another principal that must survive the purge.
	require.NoError(t, store.AddAce(ctx, &Ace{
		StoreAccount: "lakestore-dev", Path: "/system/jobservice",
		Scope: "access", EntityType: "group", Qualifier: "analysts", Perms: "r-x",
	}))

	client := login(t, srv.URL)
	sess := &session.Session{
		Endpoint:    srv.URL,
		Account:     "tidelake-dev",
		Principal:   "svc-acl-admin",
		AccessToken: "unused-here",
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	pool := tasks.NewPool(tasks.Options{Workers: 4, QueueDepth: 16})
	require.NoError(t, pool.Start(ctx))
	t.Cleanup(func() { _ = pool.Stop() })

	r, err := revoke.New(sess, revoke.NewLake(client), pool, revoke.Options{
		Entity: lake.Entity{ID: "jane", Type: lake.User},
	})
	require.NoError(t, err)

	sweep, err := r.Revoke(ctx)
	require.NoError(t, err)
	require.NoError(t, sweep.Wait(ctx))

	// 6 directories with 2 entries each, 2 files with 1 each.
	assert.Equal(t, uint64(14), r.Stats().EntriesRemoved)

	for _, p := range append(janeDirs, files...) {
		aces, err := store.Aces(ctx, "lakestore-dev", p)
		require.NoError(t, err)
		for _, ace := range aces {
			assert.NotEqual(t, "jane", ace.Qualifier, "jane still present on %s", p)
		}
	}

	aces, err := store.Aces(ctx, "lakestore-dev", "/system/jobservice")
	require.NoError(t, err)
	require.Len(t, aces, 1)
	assert.Equal(t, "analysts", aces[0].Qualifier)

	// A second full sweep is a clean no-op.
	pool2 := tasks.NewPool(tasks.Options{Workers: 2, QueueDepth: 8})
	require.NoError(t, pool2.Start(ctx))
	t.Cleanup(func() { _ = pool2.Stop() })

	again, err := revoke.New(sess, revoke.NewLake(client), pool2, revoke.Options{
		Entity: lake.Entity{ID: "jane", Type: lake.User},
	})
	require.NoError(t, err)
	require.NoError(t, again.RevokeFull(ctx))
	assert.Zero(t, again.Stats().EntriesRemoved)
}
