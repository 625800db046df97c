package lake

import (
	gopath "path"
	"strings"
)

// RootPath is the lake-store account root.
const RootPath = "/"

// JobServiceRoot is where the analytics service keeps per-job state; the
// full sweep starts here.
const JobServiceRoot = "/system/jobservice"

// WellKnownPaths returns the fixed set the fast pass covers: the account
// root plus the job-service chain the analytics service provisions on every
// store account.
func WellKnownPaths() []string {
	return []string{
		RootPath,
		"/system",
		"/system/jobservice",
		"/system/jobservice/jobs",
		"/system/jobservice/jobs/Usql",
	}
}

// CleanPath normalizes a remote path: forward slashes, leading slash, no
// trailing slash (except the root itself), dot segments collapsed.
func CleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return RootPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return gopath.Clean(p)
}

// JoinPath appends a child name to a directory path.
func JoinPath(dir, name string) string {
	return gopath.Join(CleanPath(dir), name)
}

// ParentPath returns the directory containing p ("/" for the root).
func ParentPath(p string) string {
	return gopath.Dir(CleanPath(p))
}
