//go:build darwin

package fileutil

import (
	"time"

	"golang.org/x/sys/unix"
)

func accessTime(path string, _ time.Time) (time.Time, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, err
	}
	return time.Unix(st.Atimespec.Unix()), nil
}
