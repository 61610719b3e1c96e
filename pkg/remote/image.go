package remote

import (
	"io/fs"
	"os"
	"path"
	"strings"
)

// ImageExtensions are the file extensions considered scene images when
// picking the latest snapshot from a remote folder.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff"}

// latestImage picks the most recently modified image among dir entries.
// Returns fs.ErrNotExist when no image is present.
func latestImage(dir string, entries []fs.FileInfo) (string, error) {
	var best fs.FileInfo
	for _, e := range entries {
		if e.IsDir() || !isImage(e.Name()) {
			continue
		}
		if best == nil || e.ModTime().After(best.ModTime()) {
			best = e
		}
	}
	if best == nil {
		return "", os.ErrNotExist
	}
	return path.Join(dir, best.Name()), nil
}

func isImage(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
