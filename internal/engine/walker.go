package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bamsammich/dcp/internal/filter"
)

// WalkOptions controls which entries the walker emits.
type WalkOptions struct {
	Filter *filter.Chain
}

// Walker yields plans for a source tree depth-first, one at a time. A
// directory is always yielded before anything inside it, and its children
// are only listed on the following call to Next, so the caller can create the
// destination directory first. Symlinks are followed; a symlinked directory
// that leads back to one of its ancestors is reported as ErrSymlinkLoop.
//
// A Walker is single-pass and not safe for concurrent use.
type Walker struct {
	opts    WalkOptions
	srcRoot string
	dstRoot string
	stack   []walkItem
	pending *walkItem // directory yielded last, children not yet listed
}

type walkItem struct {
	src, dst, rel string
	info          fs.FileInfo
	err           error
	ancestors     *dirNode
}

// dirNode links a directory to its parent for loop detection.
type dirNode struct {
	info   fs.FileInfo
	parent *dirNode
}

func newWalker(src, dst string, info fs.FileInfo, opts WalkOptions) *Walker {
	return &Walker{
		opts:    opts,
		srcRoot: src,
		dstRoot: dst,
		stack:   []walkItem{{src: src, dst: dst, rel: ".", info: info}},
	}
}

// Root returns the source and destination of the top-level plan.
func (w *Walker) Root() (src, dst string) {
	return w.srcRoot, w.dstRoot
}

// Next returns the next plan, or false when the walk is finished.
func (w *Walker) Next() (Plan, bool) {
	if w.pending != nil {
		dir := *w.pending
		w.pending = nil
		w.expand(dir)
	}

	if len(w.stack) == 0 {
		return Plan{}, false
	}

	it := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	plan := it.plan()
	if plan.Err == nil && plan.Kind == Directory {
		if it.ancestors.contains(it.info) {
			plan.Err = fmt.Errorf("%w: %s", ErrSymlinkLoop, it.src)
		} else {
			w.pending = &it
		}
	}
	return plan, true
}

// Prune skips the children of the directory returned by the last call to
// Next. It is a no-op if that plan was not a directory.
func (w *Walker) Prune() {
	w.pending = nil
}

func (w *Walker) expand(dir walkItem) {
	entries, err := os.ReadDir(dir.src)
	if err != nil {
		w.push(walkItem{
			src:  dir.src,
			dst:  dir.dst,
			rel:  dir.rel,
			info: dir.info,
			err:  fmt.Errorf("read directory %s: %w", dir.src, err),
		})
		return
	}

	node := &dirNode{info: dir.info, parent: dir.ancestors}

	// Push in reverse so entries pop in lexical order.
	for i := len(entries) - 1; i >= 0; i-- {
		name := entries[i].Name()
		it := walkItem{
			src:       filepath.Join(dir.src, name),
			dst:       filepath.Join(dir.dst, name),
			rel:       filepath.Join(dir.rel, name),
			ancestors: node,
		}
		it.info, it.err = statEntry(it.src)

		if w.opts.Filter != nil && it.err == nil {
			isDir := it.info.IsDir()
			if !w.opts.Filter.Match(filepath.ToSlash(it.rel), isDir, it.info.Size()) {
				continue
			}
		}
		w.push(it)
	}
}

func (w *Walker) push(it walkItem) {
	w.stack = append(w.stack, it)
}

// statEntry stats path following symlinks, and names dangling links.
func statEntry(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		if linfo, lerr := os.Lstat(path); lerr == nil && linfo.Mode()&fs.ModeSymlink != 0 {
			return nil, fmt.Errorf("%w: dangling symlink %s", ErrUnsupportedEntry, path)
		}
	}
	return nil, fmt.Errorf("stat %s: %w", path, err)
}

func (it walkItem) plan() Plan {
	p := Plan{
		Src: it.src,
		Dst: it.dst,
		Rel: it.rel,
		Err: it.err,
	}
	if it.info == nil {
		return p
	}

	p.Kind = kindOf(it.info)
	p.Mode = it.info.Mode()
	p.ModTime = it.info.ModTime()
	p.AccTime = accessTime(it.info)
	if p.Kind == File {
		p.Size = it.info.Size()
	}
	if p.Err == nil && p.Kind == Unsupported {
		p.Err = fmt.Errorf("%w: %s (%s)", ErrUnsupportedEntry, it.src, it.info.Mode().Type())
	}
	return p
}

func (n *dirNode) contains(info fs.FileInfo) bool {
	for ; n != nil; n = n.parent {
		if os.SameFile(n.info, info) {
			return true
		}
	}
	return false
}
