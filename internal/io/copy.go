package io

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertwitch/gomv/internal/filesystem"
	"github.com/desertwitch/gomv/internal/plan"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

const scratchCandidates = 1 << 16

//nolint:containedctx
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
		return cr.reader.Read(p)
	}
}

// moveAcrossDevices copies the source to the destination and removes the
// source once the copy is complete. A failed copy leaves the source intact.
func (i *Handler) moveAcrossDevices(ctx context.Context, src string, dst string) (int64, error) {
	metadata, err := i.fsHandler.Metadata(src)
	if err != nil {
		return 0, fmt.Errorf("(io-xdev) failed to get metadata: %w", err)
	}

	if err := i.ensureFreeSpace(src, dst, metadata); err != nil {
		return 0, err
	}

	bytes, err := i.copyAny(ctx, src, dst, metadata)
	if err != nil {
		return 0, err
	}

	if err := i.fsHandler.RemoveAll(src); err != nil {
		return bytes, fmt.Errorf("(io-xdev) failed to remove source after copy: %w", err)
	}

	return bytes, nil
}

func (i *Handler) ensureFreeSpace(src string, dst string, metadata *filesystem.Metadata) error {
	if i.options.SpaceChecker == nil {
		return nil
	}

	size, err := i.sizeOf(src, metadata)
	if err != nil {
		return err
	}

	enough, err := i.options.SpaceChecker.HasEnoughFreeSpace(filepath.Dir(dst), uint64(max(size, 0))) //nolint:gosec
	if err != nil {
		return fmt.Errorf("(io-xdev) failed to check free space: %w", err)
	}

	if !enough {
		return fmt.Errorf("(io-xdev) %w: %s needs %d bytes", ErrNotEnoughSpace, src, size)
	}

	return nil
}

func (i *Handler) sizeOf(path string, metadata *filesystem.Metadata) (int64, error) {
	if !metadata.IsDir {
		if metadata.IsSymlink {
			return 0, nil
		}

		return metadata.Size, nil
	}

	entries, err := i.fsHandler.ReadDir(path)
	if err != nil {
		return 0, fmt.Errorf("(io-xdev) failed to read directory: %w", err)
	}

	var size int64
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())

		childMetadata, err := i.fsHandler.Metadata(child)
		if err != nil {
			return 0, fmt.Errorf("(io-xdev) failed to get metadata: %w", err)
		}

		n, err := i.sizeOf(child, childMetadata)
		if err != nil {
			return 0, err
		}
		size += n
	}

	return size, nil
}

func (i *Handler) copyAny(ctx context.Context, src string, dst string, metadata *filesystem.Metadata) (int64, error) {
	switch {
	case metadata.IsSymlink:
		return 0, i.copySymlink(dst, metadata)

	case metadata.IsDir:
		return i.copyDirectory(ctx, src, dst, metadata)

	default:
		return i.copyFile(ctx, src, dst, metadata)
	}
}

func (i *Handler) copyDirectory(ctx context.Context, src string, dst string, metadata *filesystem.Metadata) (int64, error) {
	var bytes int64
	var copyComplete bool

	// Owner-writable until the contents are in place, the real permissions
	// follow with the metadata.
	if err := i.fsHandler.Mkdir(dst, metadata.Perms.Perm()|0o700); err != nil {
		return 0, fmt.Errorf("(io-xdev) failed to create directory: %w", err)
	}
	defer func() {
		if !copyComplete {
			i.fsHandler.RemoveAll(dst) //nolint:errcheck
		}
	}()

	entries, err := i.fsHandler.ReadDir(src)
	if err != nil {
		return 0, fmt.Errorf("(io-xdev) failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("(io-xdev) transfer canceled: %w", err)
		}

		childSrc := filepath.Join(src, entry.Name())
		childDst := filepath.Join(dst, entry.Name())

		childMetadata, err := i.fsHandler.Metadata(childSrc)
		if err != nil {
			return 0, fmt.Errorf("(io-xdev) failed to get metadata: %w", err)
		}

		n, err := i.copyAny(ctx, childSrc, childDst, childMetadata)
		if err != nil {
			return 0, err
		}
		bytes += n
	}

	if err := i.ensureMetadata(dst, metadata); err != nil {
		return 0, err
	}

	copyComplete = true

	return bytes, nil
}

func (i *Handler) copyFile(ctx context.Context, src string, dst string, metadata *filesystem.Metadata) (int64, error) {
	var transferComplete bool

	srcFile, err := i.fsHandler.Open(src)
	if err != nil {
		return 0, fmt.Errorf("(io-xdev) failed to open source file: %w", err)
	}
	defer srcFile.Close()

	var dstFile afero.File

	tmpPath, err := createScratch(dst, func(path string) error {
		var err error
		dstFile, err = i.fsHandler.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, metadata.Perms.Perm())

		return err //nolint:wrapcheck
	})
	if err != nil {
		return 0, fmt.Errorf("(io-xdev) failed to open destination file: %w", err)
	}
	defer func() {
		if !transferComplete {
			i.fsHandler.Remove(tmpPath) //nolint:errcheck
		}
	}()
	defer dstFile.Close()

	var reader io.Reader = srcFile
	var writer io.Writer = dstFile
	var srcHasher, dstHasher hash.Hash

	if i.options.VerifyCopy {
		srcHasher = blake3.New()
		dstHasher = blake3.New()
		reader = io.TeeReader(srcFile, srcHasher)
		writer = io.MultiWriter(dstFile, dstHasher)
	}

	n, err := io.Copy(writer, &contextReader{ctx: ctx, reader: reader})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("(io-xdev) transfer canceled: %w", err)
		}

		return 0, fmt.Errorf("(io-xdev) failed to copy file: %w", err)
	}

	if err := dstFile.Sync(); err != nil {
		return 0, fmt.Errorf("(io-xdev) failed to sync destination fs: %w", err)
	}

	if i.options.VerifyCopy {
		srcChecksum := hex.EncodeToString(srcHasher.Sum(nil))
		dstChecksum := hex.EncodeToString(dstHasher.Sum(nil))

		if srcChecksum != dstChecksum {
			return 0, fmt.Errorf("(io-xdev) %w: %s (src) != %s (dst)", ErrHashMismatch, srcChecksum, dstChecksum)
		}
	}

	if err := dstFile.Close(); err != nil {
		return 0, fmt.Errorf("(io-xdev) failed to close destination file: %w", err)
	}

	if err := i.fsHandler.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("(io-xdev) failed to rename temporary file to destination file: %w", err)
	}

	transferComplete = true

	if err := i.ensureMetadata(dst, metadata); err != nil {
		return n, err
	}

	return n, nil
}

func (i *Handler) copySymlink(dst string, metadata *filesystem.Metadata) error {
	tmpPath, err := createScratch(dst, func(path string) error {
		return i.fsHandler.Symlink(metadata.SymlinkTo, path)
	})
	if err != nil {
		return fmt.Errorf("(io-xdev) failed to create symlink: %w", err)
	}

	if err := i.fsHandler.Rename(tmpPath, dst); err != nil {
		i.fsHandler.Remove(tmpPath) //nolint:errcheck

		return fmt.Errorf("(io-xdev) failed to rename temporary symlink to destination: %w", err)
	}

	return nil
}

// createScratch creates a scratch entry next to dst with create, probing
// "<dst>.gomvXXXX" names until one does not exist yet. Existing entries are
// never touched, create must fail with [fs.ErrExist] for them.
func createScratch(dst string, create func(path string) error) (string, error) {
	for n := range scratchCandidates {
		path := fmt.Sprintf("%s%s%04x", dst, plan.TemporarySuffix, n)

		err := create(path)
		if err == nil {
			return path, nil
		}

		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: %s", ErrScratchUnavailable, dst)
}
