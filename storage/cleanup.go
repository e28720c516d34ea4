package storage

import (
	"os"

	"github.com/olekhov/mediapress/utils"
)

// Purge removes every file referenced by the given storage-relative paths.
// It backs both record deletion and rollback of aborted uploads. Missing
// files are logged and ignored, never escalated.
func (l *Local) Purge(paths ...string) {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		dp := l.DiskPath(p)
		if _, dup := seen[dp]; dup {
			continue
		}
		seen[dp] = struct{}{}

		err := os.Remove(dp)
		if err == nil || os.IsNotExist(err) {
			continue
		}
		if utils.Sugar != nil {
			utils.Sugar.Warnf("purge %s failed: %v", dp, err)
		}
	}
}
