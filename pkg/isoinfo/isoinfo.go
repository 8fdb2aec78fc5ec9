// Package isoinfo reads the volume label and file tree of an ISO 9660 image.
package isoinfo

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/kdomanski/iso9660"
	"github.com/spf13/afero"
)

// Entry is a file or directory inside an image.
type Entry struct {
	// Path is slash separated and relative to the image root.
	Path string
	Size int64
	Dir  bool
}

// Info describes an image.
type Info struct {
	Label   string
	Entries []Entry
}

// TotalSize returns the sum of all file sizes.
func (i *Info) TotalSize() int64 {
	var total int64
	for _, e := range i.Entries {
		if !e.Dir {
			total += e.Size
		}
	}
	return total
}

// ReadFile opens the image at name on fs and reads it.
func ReadFile(fs afero.Fs, name string) (*Info, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses the image in r.
func Read(r io.ReaderAt) (*Info, error) {
	img, err := iso9660.OpenImage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse image: %w", err)
	}

	label, err := img.Label()
	if err != nil {
		return nil, fmt.Errorf("failed to read volume label: %w", err)
	}

	root, err := img.RootDir()
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}

	info := &Info{Label: strings.TrimSpace(label)}
	if err := walk(root, "", info); err != nil {
		return nil, err
	}

	sort.Slice(info.Entries, func(a, b int) bool {
		return info.Entries[a].Path < info.Entries[b].Path
	})
	return info, nil
}

func walk(dir *iso9660.File, prefix string, info *Info) error {
	children, err := dir.GetChildren()
	if err != nil {
		return fmt.Errorf("failed to list '%s': %w", prefix, err)
	}

	for _, child := range children {
		name := entryName(child.Name())
		if name == "" || name == "." || name == ".." {
			continue
		}

		p := path.Join(prefix, name)
		if child.IsDir() {
			info.Entries = append(info.Entries, Entry{Path: p, Dir: true})
			if err := walk(child, p, info); err != nil {
				return err
			}
			continue
		}
		info.Entries = append(info.Entries, Entry{Path: p, Size: child.Size()})
	}
	return nil
}

// entryName drops the ";1" version suffix plain ISO 9660 names carry.
func entryName(name string) string {
	if i := strings.LastIndexByte(name, ';'); i >= 0 {
		name = name[:i]
	}
	return strings.Trim(name, "\x00\x01")
}
