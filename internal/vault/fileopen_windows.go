//go:build windows

package vault

import (
	"os"

	"github.com/hpungsan/inklings/internal/errors"
)

// openNoFollow opens a note. Windows has no O_NOFOLLOW; List already skips
// symlinked notes.
func openNoFollow(id, path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, errors.NewNotFound(id)
		case os.IsExist(err):
			return nil, errors.NewNameAlreadyExists(id)
		}
		return nil, err
	}
	return f, nil
}
