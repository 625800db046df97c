package lake

import (
	"fmt"
	"strings"
)

// AceScope distinguishes entries that grant access on the node itself from
// the "default" entries a directory stamps onto newly created children.
type AceScope string

const (
	ScopeAccess  AceScope = "access"
	ScopeDefault AceScope = "default"
)

// NoPerms is the permission mask carried by removal specs. The remote side
// matches entries on scope, type and qualifier only.
const NoPerms = "---"

const defaultPrefix = "default:"

// AceEntry is one parsed ACE: scope, principal type, qualifier and a
// rwx-style permission triple.
type AceEntry struct {
	Scope     AceScope
	Type      EntityType
	Qualifier string
	Perms     string
}

func (a AceEntry) String() string {
	s := fmt.Sprintf("%s:%s:%s", a.Type, a.Qualifier, a.Perms)
	if a.Scope == ScopeDefault {
		return defaultPrefix + s
	}
	return s
}

// RemovalSpec formats the ACE text submitted to the remote removal call for
// the given entity. Plain form strips the access entry only:
//
//	user:jane:---
//
// With withDefault set it strips the inherited default entry as well:
//
//	default:user:jane:---,user:jane:---
func RemovalSpec(e Entity, withDefault bool) string {
	access := fmt.Sprintf("%s:%s:%s", e.Type, e.ID, NoPerms)
	if !withDefault {
		return access
	}
	return defaultPrefix + access + "," + access
}

// RemovalEntries is RemovalSpec in parsed form, in the same order the
// formatted string renders them.
func RemovalEntries(e Entity, withDefault bool) []AceEntry {
	access := AceEntry{Scope: ScopeAccess, Type: e.Type, Qualifier: e.ID, Perms: NoPerms}
	if !withDefault {
		return []AceEntry{access}
	}
	def := access
	def.Scope = ScopeDefault
	return []AceEntry{def, access}
}

// ParseAceEntries parses a comma-separated ACE spec. It is the inverse of
// RemovalSpec and is used by the emulator to decode removal requests.
func ParseAceEntries(spec string) ([]AceEntry, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("lake: empty ace spec")
	}

	parts := strings.Split(spec, ",")
	entries := make([]AceEntry, 0, len(parts))
	for _, part := range parts {
		entry, err := parseAceEntry(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseAceEntry(s string) (AceEntry, error) {
	entry := AceEntry{Scope: ScopeAccess}

	rest := s
	if strings.HasPrefix(rest, defaultPrefix) {
		entry.Scope = ScopeDefault
		rest = strings.TrimPrefix(rest, defaultPrefix)
	}

	fields := strings.Split(rest, ":")
	if len(fields) != 3 {
		return AceEntry{}, fmt.Errorf("lake: malformed ace entry %q", s)
	}

	typ, err := ParseEntityType(fields[0])
	if err != nil {
		return AceEntry{}, fmt.Errorf("lake: malformed ace entry %q: %w", s, err)
	}

	if fields[1] == "" {
		return AceEntry{}, fmt.Errorf("lake: malformed ace entry %q: empty qualifier", s)
	}

	entry.Type = typ
	entry.Qualifier = fields[1]
	entry.Perms = fields[2]
	return entry, nil
}
