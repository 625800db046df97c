// Package lake holds the domain model shared by the lakeacl client and the
// lakesim emulator: security principals, ACE text grammar, node types and
// slash-path helpers for the hierarchical lake-store namespace.
package lake

import (
	"errors"
	"fmt"
	"strings"
)

// EntityType is the kind of security principal an ACE refers to.
type EntityType string

const (
	User  EntityType = "user"
	Group EntityType = "group"
)

var (
	ErrEmptyEntityID   = errors.New("lake: entity id is empty")
	ErrInvalidEntityID = errors.New("lake: entity id must not contain ':' or ','")
)

// ParseEntityType accepts the CLI spellings of an entity type,
// case-insensitively.
func ParseEntityType(s string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return User, nil
	case "group":
		return Group, nil
	default:
		return "", fmt.Errorf("lake: invalid entity type %q (want user or group)", s)
	}
}

func (t EntityType) String() string {
	return string(t)
}

func (t EntityType) Valid() bool {
	return t == User || t == Group
}

// Entity identifies the principal whose access is being revoked.
type Entity struct {
	ID   string
	Type EntityType
}

func (e Entity) Validate() error {
	if e.ID == "" {
		return ErrEmptyEntityID
	}
	if strings.ContainsAny(e.ID, ":,") {
		return ErrInvalidEntityID
	}
	if !e.Type.Valid() {
		return fmt.Errorf("lake: invalid entity type %q", string(e.Type))
	}
	return nil
}

func (e Entity) String() string {
	return string(e.Type) + ":" + e.ID
}
