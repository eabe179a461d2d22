package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Classify reports what kind of entry path is. Symlinks are followed. A path
// that does not exist is Missing, not an error.
func Classify(path string) (PathKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Missing, nil
		}
		return Missing, fmt.Errorf("stat %s: %w", path, err)
	}
	return kindOf(info), nil
}

func kindOf(info fs.FileInfo) PathKind {
	switch mode := info.Mode(); {
	case mode.IsRegular():
		return File
	case mode.IsDir():
		return Directory
	default:
		return Unsupported
	}
}

// ResolveTargets classifies the source and destination and returns the lazy
// sequence of plans that copies one onto the other:
//
//	file      -> missing    the destination is the new file
//	file      -> file       the destination is overwritten
//	file      -> directory  the file lands in directory/base(src)
//	directory -> missing    the destination is created and mirrored
//	directory -> directory  the source's children are merged in
//	directory -> file       ErrArgumentConflict
//
// A missing source fails with ErrSourceNotFound. Nothing is touched on disk.
func ResolveTargets(src, dst string, opts WalkOptions) (*Walker, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrInvalidRequest, src, err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrInvalidRequest, dst, err)
	}

	srcInfo, err := os.Stat(absSrc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, absSrc)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceNotFound, absSrc, err)
	}
	srcKind := kindOf(srcInfo)

	dstKind, err := Classify(absDst)
	if err != nil {
		return nil, fmt.Errorf("%w: destination: %w", ErrInvalidRequest, err)
	}

	switch srcKind {
	case File:
		target := absDst
		if dstKind == Directory {
			target = filepath.Join(absDst, filepath.Base(absSrc))
		}
		return newWalker(absSrc, target, srcInfo, opts), nil

	case Directory:
		if dstKind == File {
			return nil, fmt.Errorf("%w: cannot copy directory %s to file %s",
				ErrArgumentConflict, absSrc, absDst)
		}
		if dstKind == Unsupported {
			return nil, fmt.Errorf("%w: destination %s is not a directory",
				ErrArgumentConflict, absDst)
		}
		if inside(resolveExisting(absSrc), resolveExisting(absDst)) {
			return nil, fmt.Errorf("%w: destination %s is inside source %s",
				ErrArgumentConflict, absDst, absSrc)
		}
		return newWalker(absSrc, absDst, srcInfo, opts), nil

	default:
		return nil, fmt.Errorf("%w: source %s is neither a file nor a directory",
			ErrArgumentConflict, absSrc)
	}
}

// inside reports whether child is strictly below parent.
func inside(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// resolveExisting evaluates symlinks in the longest existing prefix of path.
func resolveExisting(path string) string {
	var tail []string
	p := path
	for {
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return path
		}
		tail = append([]string{filepath.Base(p)}, tail...)
		p = parent
	}
}
