//go:build !(linux || darwin || freebsd || openbsd || netbsd)

package pipeline

import (
	"os"
	"time"
)

// changeTime falls back to mtime where ctime is not exposed
func changeTime(_ string, info os.FileInfo) time.Time {
	return info.ModTime()
}
