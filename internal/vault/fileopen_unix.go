//go:build !windows

package vault

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/inklings/internal/errors"
)

// openNoFollow opens a note with O_NOFOLLOW so a symlink planted at the final
// path component is never read or written through.
func openNoFollow(id, path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		switch {
		case stderrors.Is(err, syscall.ELOOP):
			return nil, errors.NewInvalidRequest("note must not be a symlink")
		case stderrors.Is(err, syscall.ENOENT):
			return nil, errors.NewNotFound(id)
		case stderrors.Is(err, syscall.EEXIST):
			return nil, errors.NewNameAlreadyExists(id)
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}
