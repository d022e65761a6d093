package reader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/docpipe/core"
)

var defaultExtensions = []string{".txt", ".md"}

// FileReader reads text documents from a directory tree. Each matching file
// becomes one node whose SourceId is the file path relative to the root and
// whose Id is derived from the file content.
type FileReader struct {
	root       string
	extensions []string
	recursive  bool
	logger     *slog.Logger
}

var _ Reader = (*FileReader)(nil)

// FileOption configures a FileReader.
type FileOption func(*FileReader)

// WithExtensions sets the file extensions to read. Default is .txt and .md.
func WithExtensions(exts ...string) FileOption {
	return func(r *FileReader) {
		if len(exts) > 0 {
			r.extensions = exts
		}
	}
}

// WithRecursive controls whether subdirectories are walked. Default is true.
func WithRecursive(recursive bool) FileOption {
	return func(r *FileReader) {
		r.recursive = recursive
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) FileOption {
	return func(r *FileReader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewFileReader creates a reader over the given directory.
func NewFileReader(root string, opts ...FileOption) (*FileReader, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	r := &FileReader{
		root:       root,
		extensions: defaultExtensions,
		recursive:  true,
		logger:     slog.Default().With("component", "filereader"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Read walks the directory and returns one node per matching file, in
// lexical path order so repeated reads of an unchanged tree produce the
// same batch.
func (r *FileReader) Read(ctx context.Context) ([]*core.Node, error) {
	var nodes []*core.Node

	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if !r.recursive && path != r.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !r.matches(path) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		content := string(data)
		if strings.TrimSpace(content) == "" {
			r.logger.Debug("skipping empty file", "path", path)
			return nil
		}

		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			rel = path
		}

		nodes = append(nodes, &core.Node{
			Id:       core.IDFromContent(content),
			SourceId: rel,
			Content:  content,
			Metadata: map[string]string{"file_path": rel},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *FileReader) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(r.extensions, ext)
}
