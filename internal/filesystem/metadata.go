package filesystem

import (
	"fmt"
	"io/fs"
	"syscall"
	"time"
)

// Metadata holds the attributes of a path which are carried over when it is
// copied between devices.
type Metadata struct {
	Perms      fs.FileMode
	UID        int
	GID        int
	HasOwner   bool
	AccessedAt time.Time
	ModifiedAt time.Time
	Size       int64
	IsDir      bool
	IsSymlink  bool
	SymlinkTo  string
}

// Metadata returns the [Metadata] of a path, not following a final symbolic
// link. Ownership and access times are only available on filesystems that
// expose a [syscall.Stat_t].
func (f *Handler) Metadata(path string) (*Metadata, error) {
	fi, err := f.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("(fs-metadata) %w: %w", ErrNoMetadata, err)
	}

	metadata := &Metadata{
		Perms:      fi.Mode().Perm(),
		AccessedAt: fi.ModTime(),
		ModifiedAt: fi.ModTime(),
		Size:       fi.Size(),
		IsDir:      fi.IsDir(),
		IsSymlink:  fi.Mode()&fs.ModeSymlink != 0,
	}

	if stat, ok := fi.Sys().(*syscall.Stat_t); ok {
		metadata.UID = int(stat.Uid)
		metadata.GID = int(stat.Gid)
		metadata.HasOwner = true
		metadata.AccessedAt = time.Unix(stat.Atim.Unix())
	}

	if metadata.IsSymlink {
		target, err := f.Readlink(path)
		if err != nil {
			return nil, fmt.Errorf("(fs-metadata) %w: %w", ErrNoMetadata, err)
		}
		metadata.SymlinkTo = target
	}

	return metadata, nil
}
