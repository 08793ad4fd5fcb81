package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileExt = ".sfm"

// FileStore keeps one blob file per model in a directory.
type FileStore struct {
	dir   string
	codec CodecType
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store writing blobs compressed with codec into dir, creating the
// directory if needed.
func NewFileStore(dir string, codec CodecType) (*FileStore, error) {
	if _, err := CreateCodec(codec); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create model directory %s, %w", dir, err)
	}
	return &FileStore{dir: dir, codec: codec}, nil
}

// Path returns the file a model is stored at.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

// Save writes the bundle through a temporary file so a partially written model is never
// visible under its name.
func (s *FileStore) Save(ctx context.Context, name string, b *Bundle) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	blob, err := Encode(b, s.codec)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("unable to create temporary model file, %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write model %s, %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write model %s, %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return fmt.Errorf("unable to store model %s, %w", name, err)
	}
	slog.Info("saved model", "name", name, "path", s.Path(name), "codec", s.codec, "bytes", len(blob))
	return nil
}

func (s *FileStore) Load(ctx context.Context, name string) (*Bundle, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s, %w", name, ErrModelNotFound)
		}
		return nil, fmt.Errorf("unable to read model %s, %w", name, err)
	}
	b, err := Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("unable to decode model %s, %w", name, err)
	}
	slog.Debug("loaded model", "name", name, "bytes", len(blob))
	return b, nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("unable to list models in %s, %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), fileExt)
		if validateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Latest(ctx context.Context) (string, *Bundle, error) {
	names, err := s.List(ctx)
	if err != nil {
		return "", nil, err
	}
	if len(names) == 0 {
		return "", nil, fmt.Errorf("no models in %s, %w", s.dir, ErrModelNotFound)
	}
	name := names[len(names)-1]
	b, err := s.Load(ctx, name)
	if err != nil {
		return "", nil, err
	}
	return name, b, nil
}

// LoadFile decodes a blob file at an arbitrary path.
func LoadFile(path string) (*Bundle, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read model file %s, %w", path, err)
	}
	b, err := Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("unable to decode model file %s, %w", path, err)
	}
	return b, nil
}
