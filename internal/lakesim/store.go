package lakesim

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jmoiron/sqlx"

	"github.com/tidelake/lakeacl/internal/lake"
)

const (
	aclCacheSize = 1024
	aclCacheTTL  = time.Minute
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrBadCredentials  = errors.New("bad credentials")
	ErrPathNotFound    = errors.New("path not found")
	ErrNotADirectory   = errors.New("not a directory")
	ErrTypeConflict    = errors.New("path exists with a different type")
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL UNIQUE,
	store_account TEXT NOT NULL,
	location      TEXT NOT NULL DEFAULT '',
	principal     TEXT NOT NULL DEFAULT 'svc-acl-admin',
	access_key    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nodes (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	store_account TEXT NOT NULL,
	path          TEXT NOT NULL,
	parent        TEXT NOT NULL,
	type          TEXT NOT NULL CHECK (type IN ('FILE', 'DIRECTORY')),
	UNIQUE (store_account, path)
);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes (store_account, parent);

CREATE TABLE IF NOT EXISTS aces (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	store_account TEXT NOT NULL,
	path          TEXT NOT NULL,
	scope         TEXT NOT NULL CHECK (scope IN ('access', 'default')),
	entity_type   TEXT NOT NULL CHECK (entity_type IN ('user', 'group')),
	qualifier     TEXT NOT NULL,
	perms         TEXT NOT NULL DEFAULT '---',
	UNIQUE (store_account, path, scope, entity_type, qualifier)
);
CREATE INDEX IF NOT EXISTS idx_aces_path ON aces (store_account, path);
`

type Account struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	StoreAccount string `db:"store_account"`
	Location     string `db:"location"`
	Principal    string `db:"principal"`
	AccessKey    string `db:"access_key"`
}

type Node struct {
	ID           int64  `db:"id"`
	StoreAccount string `db:"store_account"`
	Path         string `db:"path"`
	Parent       string `db:"parent"`
	Type         string `db:"type"`
}

// Name is the path suffix reported by list calls.
func (n *Node) Name() string {
	if idx := strings.LastIndexByte(n.Path, '/'); idx >= 0 {
		return n.Path[idx+1:]
	}
	return n.Path
}

type Ace struct {
	ID           int64  `db:"id"`
	StoreAccount string `db:"store_account"`
	Path         string `db:"path"`
	Scope        string `db:"scope"`
	EntityType   string `db:"entity_type"`
	Qualifier    string `db:"qualifier"`
	Perms        string `db:"perms"`
}

// Store is the sqlite-backed namespace: accounts, a node tree per
// store account, and the ACEs hanging off each node. ACL reads go
// through a small expiring cache since the sweep hammers them.
type Store struct {
	db   *sqlx.DB
	acls *expirable.LRU[string, []Ace]
}

func NewStore(conn *sqlx.DB) *Store {
	return &Store{
		db:   conn,
		acls: expirable.NewLRU[string, []Ace](aclCacheSize, nil, aclCacheTTL),
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) UpsertAccount(ctx context.Context, acct *Account) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO accounts (name, store_account, location, principal, access_key)
		VALUES (:name, :store_account, :location, :principal, :access_key)
		ON CONFLICT (name) DO UPDATE SET
			store_account = excluded.store_account,
			location      = excluded.location,
			principal     = excluded.principal,
			access_key    = excluded.access_key`,
		acct)
	if err != nil {
		return fmt.Errorf("upsert account %s: %w", acct.Name, err)
	}
	return nil
}

func (s *Store) AccountByName(ctx context.Context, name string) (*Account, error) {
	var acct Account
	err := s.db.GetContext(ctx, &acct, `SELECT * FROM accounts WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", name, err)
	}
	return &acct, nil
}

// Authenticate checks an account key. Lookup failures and key
// mismatches both come back as ErrBadCredentials.
func (s *Store) Authenticate(ctx context.Context, name, key string) (*Account, error) {
	acct, err := s.AccountByName(ctx, name)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(acct.AccessKey), []byte(key)) != 1 {
		return nil, ErrBadCredentials
	}
	return acct, nil
}

// EnsureDir creates the directory and every missing ancestor.
func (s *Store) EnsureDir(ctx context.Context, store, path string) error {
	path = lake.CleanPath(path)
	for _, dir := range ancestry(path) {
		if err := s.insertNode(ctx, store, dir, string(lake.NodeDirectory)); err != nil {
			return err
		}
	}
	node, err := s.NodeAt(ctx, store, path)
	if err != nil {
		return err
	}
	if node.Type != string(lake.NodeDirectory) {
		return fmt.Errorf("%w: %s", ErrNotADirectory, path)
	}
	return nil
}

// CreateFile creates a file node, with parents, mkdir -p style.
// Creating the same file twice is a no-op.
func (s *Store) CreateFile(ctx context.Context, store, path string) error {
	path = lake.CleanPath(path)
	if path == lake.RootPath {
		return fmt.Errorf("%w: cannot create a file at the root", ErrNotADirectory)
	}
	if err := s.EnsureDir(ctx, store, lake.ParentPath(path)); err != nil {
		return err
	}
	if err := s.insertNode(ctx, store, path, string(lake.NodeFile)); err != nil {
		return err
	}
	node, err := s.NodeAt(ctx, store, path)
	if err != nil {
		return err
	}
	if node.Type != string(lake.NodeFile) {
		return fmt.Errorf("%w: %s is a directory", ErrTypeConflict, path)
	}
	return nil
}

func (s *Store) insertNode(ctx context.Context, store, path, nodeType string) error {
	parent := ""
	if path != lake.RootPath {
		parent = lake.ParentPath(path)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO nodes (store_account, path, parent, type)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (store_account, path) DO NOTHING`,
		store, path, parent, nodeType)
	if err != nil {
		return fmt.Errorf("insert node %s: %w", path, err)
	}
	return nil
}

func (s *Store) NodeAt(ctx context.Context, store, path string) (*Node, error) {
	var node Node
	err := s.db.GetContext(ctx, &node,
		`SELECT * FROM nodes WHERE store_account = ? AND path = ?`,
		store, lake.CleanPath(path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPathNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", path, err)
	}
	return &node, nil
}

// Children returns the immediate children of dir, ordered by path.
func (s *Store) Children(ctx context.Context, store, dir string) ([]Node, error) {
	var nodes []Node
	err := s.db.SelectContext(ctx, &nodes,
		`SELECT * FROM nodes WHERE store_account = ? AND parent = ? ORDER BY path`,
		store, lake.CleanPath(dir))
	if err != nil {
		return nil, fmt.Errorf("children of %s: %w", dir, err)
	}
	return nodes, nil
}

func (s *Store) Aces(ctx context.Context, store, path string) ([]Ace, error) {
	path = lake.CleanPath(path)
	key := aclKey(store, path)
	if cached, ok := s.acls.Get(key); ok {
		return cached, nil
	}

	var aces []Ace
	err := s.db.SelectContext(ctx, &aces, `
		SELECT * FROM aces
		WHERE store_account = ? AND path = ?
		ORDER BY scope, entity_type, qualifier`,
		store, path)
	if err != nil {
		return nil, fmt.Errorf("aces of %s: %w", path, err)
	}

	s.acls.Add(key, aces)
	return aces, nil
}

func (s *Store) AddAce(ctx context.Context, ace *Ace) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO aces (store_account, path, scope, entity_type, qualifier, perms)
		VALUES (:store_account, :path, :scope, :entity_type, :qualifier, :perms)
		ON CONFLICT (store_account, path, scope, entity_type, qualifier)
			DO UPDATE SET perms = excluded.perms`,
		ace)
	if err != nil {
		return fmt.Errorf("add ace on %s: %w", ace.Path, err)
	}
	s.acls.Remove(aclKey(ace.StoreAccount, ace.Path))
	return nil
}

// RemoveAces drops the matching entries and reports how many rows
// actually went away. Entries that are not present are skipped
// silently, matching the remote API's idempotent removal.
func (s *Store) RemoveAces(ctx context.Context, store, path string, entries []lake.AceEntry) (int, error) {
	path = lake.CleanPath(path)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	removed := 0
	for _, entry := range entries {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM aces
			WHERE store_account = ? AND path = ? AND scope = ? AND entity_type = ? AND qualifier = ?`,
			store, path, string(entry.Scope), string(entry.Type), entry.Qualifier)
		if err != nil {
			return 0, fmt.Errorf("remove ace on %s: %w", path, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit remove: %w", err)
	}

	s.acls.Remove(aclKey(store, path))
	return removed, nil
}

// ancestry lists every path from the root down to p, inclusive.
func ancestry(p string) []string {
	p = lake.CleanPath(p)
	if p == lake.RootPath {
		return []string{lake.RootPath}
	}

	paths := []string{lake.RootPath}
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	current := ""
	for _, seg := range segments {
		current += "/" + seg
		paths = append(paths, current)
	}
	return paths
}

func aclKey(store, path string) string {
	return store + "\x00" + path
}
