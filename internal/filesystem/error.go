package filesystem

import "errors"

var (
	// ErrLinksUnsupported is an error that occurs when symbolic links are
	// read or created on a filesystem which cannot represent them.
	ErrLinksUnsupported = errors.New("filesystem does not support symbolic links")

	// ErrNoMetadata is an error that occurs when the metadata of a path
	// cannot be established.
	ErrNoMetadata = errors.New("failed to establish metadata")
)
