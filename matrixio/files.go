// SPDX-License-Identifier: MIT

package matrixio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/katalvlaran/parmatrix/matrix"
)

// Format identifies an on-disk codec.
type Format int

// Supported formats.
const (
	FormatText Format = iota + 1
	FormatYAML
	FormatTOML
)

// FormatFor picks the codec from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return FormatText, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
}

// ReadFile reads every matrix in path. Structured formats hold one matrix;
// text files may hold several.
func ReadFile(path string) ([]*matrix.Dense, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m *matrix.Dense
	switch format {
	case FormatText:
		ms, err := ReadAllText(f)
		if err == nil && len(ms) == 0 {
			err = fmt.Errorf("%w: empty document", ErrMalformed)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return ms, nil
	case FormatYAML:
		m, err = ReadYAML(f)
	case FormatTOML:
		m, err = ReadTOML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return []*matrix.Dense{m}, nil
}

// WriteFile writes m to path in the format its extension names.
func WriteFile(path string, m *matrix.Dense) (err error) {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w func(io.Writer, *matrix.Dense) error
	switch format {
	case FormatText:
		w = WriteText
	case FormatYAML:
		w = WriteYAML
	case FormatTOML:
		w = WriteTOML
	}
	if err = w(f, m); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

// LoadDir reads every supported file in dir, in name order. Files that fail
// to parse are skipped; their errors are joined into the returned error
// alongside the matrices that did load.
func LoadDir(dir string) ([]*matrix.Dense, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var (
		out  []*matrix.Dense
		errs []error
	)
	for _, e := range entries { // ReadDir sorts by name
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if _, err := FormatFor(path); err != nil {
			continue
		}
		ms, err := ReadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, ms...)
	}

	return out, errors.Join(errs...)
}

// SaveDir writes each matrix to dir/<name>.txt, creating dir if needed.
func SaveDir(dir string, ms []*matrix.Dense) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, m := range ms {
		if err := checkWritable(m); err != nil {
			return err
		}
		if err := WriteFile(filepath.Join(dir, m.Name()+".txt"), m); err != nil {
			return err
		}
	}

	return nil
}
