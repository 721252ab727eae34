// Package registry discovers local model weights on disk.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/johnmai-dev/CuteMLX/internal/common/fsutil"
	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

// LoadDir scans a directory for *.gguf files and builds the model list from
// filenames. ID and Name are the full filename (including extension); Path is
// the absolute file path; SizeMB is rounded up from the file size.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		p := filepath.Join(abs, name)
		models = append(models, types.Model{
			ID:     name,
			Name:   name,
			Path:   p,
			SizeMB: fsutil.FileSizeMB(p),
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// Resolve picks the model to serve. want may be an ID from the scanned set or
// a direct path to a .gguf file; an empty want selects the sole scanned model
// when exactly one exists.
func Resolve(models []types.Model, want string) (types.Model, error) {
	want = strings.TrimSpace(want)
	if want == "" {
		if len(models) == 1 {
			return models[0], nil
		}
		return types.Model{}, notFoundError{have: len(models)}
	}
	for _, m := range models {
		if m.ID == want {
			return m, nil
		}
	}
	if strings.HasSuffix(strings.ToLower(want), ".gguf") {
		if p, err := fsutil.ExpandHome(want); err == nil {
			if abs, aerr := filepath.Abs(p); aerr == nil && fsutil.PathExists(abs) {
				name := filepath.Base(abs)
				return types.Model{ID: name, Name: name, Path: abs, SizeMB: fsutil.FileSizeMB(abs)}, nil
			}
		}
	}
	return types.Model{}, notFoundError{want: want, have: len(models)}
}

// notFoundError reports that no model matched the selection.
type notFoundError struct {
	want string
	have int
}

func (e notFoundError) Error() string {
	switch {
	case e.want == "" && e.have == 0:
		return "no models found in models directory"
	case e.want == "":
		return fmt.Sprintf("%d models found; pass --model to choose one", e.have)
	default:
		return fmt.Sprintf("model %q not found among %d scanned models", e.want, e.have)
	}
}

// IsNotFound reports whether err means the requested model does not exist.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}
