// Package revoke walks the lake-store namespace and strips an
// entity's ACL entries, fast paths first, full tree on request.
package revoke

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tidelake/lakeacl/internal/lake"
	"github.com/tidelake/lakeacl/internal/session"
	"github.com/tidelake/lakeacl/internal/tasks"
)

// Revoker drives one revocation run for one entity. Construct it,
// call Revoke (or RevokeFast/RevokeFull directly), read Stats.
type Revoker struct {
	sess *session.Session
	lake Lake
	pool *tasks.Pool
	opts Options

	mu    sync.Mutex
	store string // resolved lake-store account, cached

	seen mapset.Set[string] // path+spec pairs already submitted

	visited   atomic.Uint64
	submitted atomic.Uint64
	skipped   atomic.Uint64
	failed    atomic.Uint64
	removed   atomic.Uint64
}

func New(sess *session.Session, lk Lake, pool *tasks.Pool, opts Options) (*Revoker, error) {
	if sess == nil || sess.Account == "" {
		return nil, ErrNoSession
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Revoker{
		sess: sess,
		lake: lk,
		pool: pool,
		opts: opts,
		seen: mapset.NewSet[string](),
	}, nil
}

// Revoke is the default mode: clear the well-known paths now, then
// keep sweeping the whole tree in the background. The returned handle
// is the sweep; the caller decides when (or whether) to wait on it.
func (r *Revoker) Revoke(ctx context.Context) (*tasks.Task, error) {
	if err := r.RevokeFast(ctx); err != nil {
		return nil, err
	}

	slog.Info("fast pass done, sweeping the full tree in the background",
		"entity", r.opts.Entity, "root", lake.JobServiceRoot)

	return tasks.Go(ctx, "full-sweep", func(ctx context.Context) error {
		return r.RevokeFull(ctx)
	}), nil
}

// RevokeFast clears the entity from every well-known path that
// exists. Bounded and quick: it waits for its own removals.
func (r *Revoker) RevokeFast(ctx context.Context) error {
	store, err := r.storeAccount(ctx)
	if err != nil {
		return err
	}

	spec := lake.RemovalSpec(r.opts.Entity, true)
	var waits []*tasks.Task
	for _, path := range lake.WellKnownPaths() {
		status, err := r.lake.Status(ctx, store, path)
		if err != nil {
			return fmt.Errorf("probe %s: %w", path, err)
		}
		if !status.Exists {
			r.skipped.Add(1)
			slog.Debug("path absent, skipping", "path", path)
			continue
		}

		r.visited.Add(1)
		task, err := r.submit(store, path, spec)
		if err != nil {
			return err
		}
		if task != nil {
			waits = append(waits, task)
		}
	}

	var failures int
	var first error
	for _, task := range waits {
		if err := task.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return err
			}
			failures++
			if first == nil {
				first = err
			}
		}
	}
	if failures > 0 {
		return fmt.Errorf("fast revoke: %d of %d removals failed: %w", failures, len(waits), first)
	}
	return nil
}

// RevokeFull sweeps the whole job-service tree depth first and joins
// every leaf removal before returning. Safe to re-run: removing
// entries that are already gone is a remote no-op.
func (r *Revoker) RevokeFull(ctx context.Context) error {
	store, err := r.storeAccount(ctx)
	if err != nil {
		return err
	}

	slog.Info("sweeping tree", "root", lake.JobServiceRoot, "entity", r.opts.Entity, "dry_run", r.opts.DryRun)

	sweepErr := r.sweep(ctx, store, lake.JobServiceRoot)

	// Join everything submitted so far, even when the walk aborted, so
	// no removal is still in flight after we return.
	summary, drainErr := r.pool.Drain(ctx)
	if sweepErr != nil {
		return sweepErr
	}
	if drainErr != nil {
		return drainErr
	}
	if summary.Failed > 0 {
		return fmt.Errorf("full revoke: %d of %d removals failed: %w",
			summary.Failed, summary.Submitted, summary.FirstError)
	}
	return nil
}

// Stats returns a snapshot of the run so far.
func (r *Revoker) Stats() Stats {
	return Stats{
		PathsVisited:   r.visited.Load(),
		Submitted:      r.submitted.Load(),
		Skipped:        r.skipped.Load(),
		Failed:         r.failed.Load(),
		EntriesRemoved: r.removed.Load(),
	}
}

// sweep lists dir and handles each child: files get an access-scope
// removal, directories get the default variant and a recursive visit.
// A child of any other type kills the walk on the spot.
func (r *Revoker) sweep(ctx context.Context, store, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children, err := r.lake.List(ctx, store, dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}

	for _, child := range children {
		path := lake.JoinPath(dir, child.Name)
		r.visited.Add(1)

		if r.excluded(path) {
			r.skipped.Add(1)
			slog.Debug("excluded", "path", path)
			continue
		}

		switch child.Type {
		case lake.NodeFile:
			if _, err := r.submit(store, path, lake.RemovalSpec(r.opts.Entity, false)); err != nil {
				return err
			}
		case lake.NodeDirectory:
			if _, err := r.submit(store, path, lake.RemovalSpec(r.opts.Entity, true)); err != nil {
				return err
			}
			if err := r.sweep(ctx, store, path); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q at %s", ErrUnknownNodeType, child.Type, path)
		}
	}
	return nil
}

// submit queues one removal. Returns a nil task when the submission
// was deduplicated or this is a dry run.
func (r *Revoker) submit(store, path, spec string) (*tasks.Task, error) {
	if !r.seen.Add(path + " " + spec) {
		r.skipped.Add(1)
		return nil, nil
	}

	r.submitted.Add(1)
	if r.opts.DryRun {
		slog.Info("dry-run: would remove", "path", path, "aces", spec)
		return nil, nil
	}

	task, err := r.pool.Submit("revoke "+path, func(ctx context.Context) error {
		resp, err := r.lake.RemoveAclEntries(ctx, store, path, spec)
		if err != nil {
			r.failed.Add(1)
			return fmt.Errorf("remove acl on %s: %w", path, err)
		}
		r.removed.Add(uint64(resp.Removed))
		slog.Debug("acl entries removed", "path", path, "removed", resp.Removed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *Revoker) storeAccount(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store != "" {
		return r.store, nil
	}

	view, err := r.lake.ResolveAccount(ctx, r.sess.Account)
	if err != nil {
		return "", fmt.Errorf("resolve account %q: %w", r.sess.Account, err)
	}
	r.store = view.StoreAccount
	slog.Info("resolved analytics account", "account", r.sess.Account, "store", r.store)
	return r.store, nil
}

func (r *Revoker) excluded(path string) bool {
	trimmed := strings.TrimPrefix(path, "/")
	for _, pattern := range r.opts.Excludes {
		if ok, _ := doublestar.Match(strings.TrimPrefix(pattern, "/"), trimmed); ok {
			return true
		}
	}
	return false
}
