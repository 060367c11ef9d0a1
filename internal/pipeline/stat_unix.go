//go:build linux || darwin || freebsd || openbsd || netbsd

package pipeline

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// changeTime returns the inode change time, falling back to mtime
func changeTime(path string, info os.FileInfo) time.Time {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return info.ModTime()
	}
	sec, nsec := st.Ctim.Unix()
	return time.Unix(sec, nsec)
}
