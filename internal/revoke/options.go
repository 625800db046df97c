package revoke

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"

	"github.com/tidelake/lakeacl/internal/lake"
)

var (
	ErrNoSession       = errors.New("session is required")
	ErrUnknownNodeType = errors.New("unknown node type")
)

// Options shapes one revocation run. The entity is who loses access;
// everything else tunes how the tree is walked.
type Options struct {
	Entity   lake.Entity
	Excludes []string // doublestar patterns, matched against store paths
	DryRun   bool
}

func (o *Options) Validate() error {
	if err := o.Entity.Validate(); err != nil {
		return err
	}
	for _, pattern := range o.Excludes {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

// Stats is a point-in-time snapshot of a run.
type Stats struct {
	PathsVisited   uint64
	Submitted      uint64
	Skipped        uint64
	Failed         uint64
	EntriesRemoved uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("paths=%s submitted=%s skipped=%s failed=%s entries=%s",
		humanize.Comma(int64(s.PathsVisited)),
		humanize.Comma(int64(s.Submitted)),
		humanize.Comma(int64(s.Skipped)),
		humanize.Comma(int64(s.Failed)),
		humanize.Comma(int64(s.EntriesRemoved)))
}
