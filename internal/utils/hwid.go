package utils

import (
	"github.com/denisbrodbeck/machineid"
)

// HWID is a stable, app-scoped identifier for this machine. Falls back to a
// fixed sentinel when the platform cannot provide one (e.g. minimal
// containers), so request headers never end up empty.
var HWID = func() string {
	id, err := machineid.ProtectedID("lakeacl")
	if err != nil {
		return "unknown"
	}
	return id
}()
