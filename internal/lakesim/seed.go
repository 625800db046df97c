package lakesim

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v3"

	"github.com/tidelake/lakeacl/internal/lake"
)

// Seed is the fixture file loaded at startup. Everything in it is
// upserted, so reseeding over an existing database is safe.
type Seed struct {
	Accounts []SeedAccount `yaml:"accounts"`
	Trees    []SeedTree    `yaml:"trees"`
}

type SeedAccount struct {
	Name         string `yaml:"name"`
	StoreAccount string `yaml:"storeAccount"`
	Location     string `yaml:"location"`
	Principal    string `yaml:"principal"`
	AccessKey    string `yaml:"accessKey"`
}

type SeedTree struct {
	StoreAccount string    `yaml:"storeAccount"`
	Directories  []string  `yaml:"directories"`
	Files        []string  `yaml:"files"`
	Aces         []SeedAce `yaml:"aces"`
}

type SeedAce struct {
	Path   string `yaml:"path"`
	Scope  string `yaml:"scope"`
	Entity string `yaml:"entity"` // "<type>:<id>", e.g. "user:jane"
	Perms  string `yaml:"perms"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *Seed) Validate() error {
	names := mapset.NewThreadUnsafeSet[string]()
	for _, acct := range s.Accounts {
		if acct.Name == "" || acct.StoreAccount == "" || acct.AccessKey == "" {
			return fmt.Errorf("account %q: name, storeAccount and accessKey are required", acct.Name)
		}
		if !names.Add(acct.Name) {
			return fmt.Errorf("duplicate account %q", acct.Name)
		}
	}

	for _, tree := range s.Trees {
		if tree.StoreAccount == "" {
			return fmt.Errorf("tree without storeAccount")
		}
		paths := mapset.NewThreadUnsafeSet[string]()
		for _, p := range append(append([]string{}, tree.Directories...), tree.Files...) {
			if !paths.Add(lake.CleanPath(p)) {
				return fmt.Errorf("tree %s: duplicate path %q", tree.StoreAccount, p)
			}
		}
		for _, ace := range tree.Aces {
			if _, _, err := splitEntity(ace.Entity); err != nil {
				return fmt.Errorf("tree %s: ace on %s: %w", tree.StoreAccount, ace.Path, err)
			}
			scope := lake.AceScope(ace.Scope)
			if scope != lake.ScopeAccess && scope != lake.ScopeDefault {
				return fmt.Errorf("tree %s: ace on %s: bad scope %q", tree.StoreAccount, ace.Path, ace.Scope)
			}
		}
	}
	return nil
}

// Apply upserts the fixture into the store.
func (s *Seed) Apply(ctx context.Context, store *Store) error {
	for _, acct := range s.Accounts {
		principal := acct.Principal
		if principal == "" {
			principal = "svc-acl-admin"
		}
		err := store.UpsertAccount(ctx, &Account{
			Name:         acct.Name,
			StoreAccount: acct.StoreAccount,
			Location:     acct.Location,
			Principal:    principal,
			AccessKey:    acct.AccessKey,
		})
		if err != nil {
			return err
		}
	}

	for _, tree := range s.Trees {
		for _, dir := range tree.Directories {
			if err := store.EnsureDir(ctx, tree.StoreAccount, dir); err != nil {
				return err
			}
		}
		for _, file := range tree.Files {
			if err := store.CreateFile(ctx, tree.StoreAccount, file); err != nil {
				return err
			}
		}
		for _, ace := range tree.Aces {
			entityType, qualifier, err := splitEntity(ace.Entity)
			if err != nil {
				return err
			}
			perms := ace.Perms
			if perms == "" {
				perms = "rwx"
			}
			err = store.AddAce(ctx, &Ace{
				StoreAccount: tree.StoreAccount,
				Path:         lake.CleanPath(ace.Path),
				Scope:        ace.Scope,
				EntityType:   string(entityType),
				Qualifier:    qualifier,
				Perms:        perms,
			})
			if err != nil {
				return err
			}
		}
	}

	slog.Info("seed applied", "accounts", len(s.Accounts), "trees", len(s.Trees))
	return nil
}

func splitEntity(s string) (lake.EntityType, string, error) {
	typePart, id, found := strings.Cut(s, ":")
	if !found || id == "" {
		return "", "", fmt.Errorf("bad entity %q, want <type>:<id>", s)
	}
	entityType, err := lake.ParseEntityType(typePart)
	if err != nil {
		return "", "", err
	}
	return entityType, id, nil
}
