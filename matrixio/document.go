// SPDX-License-Identifier: MIT

package matrixio

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/parmatrix/matrix"
)

// document is the structured (YAML/TOML) form of one matrix.
type document struct {
	Name string      `yaml:"name" toml:"name"`
	Rows int         `yaml:"rows" toml:"rows"`
	Cols int         `yaml:"cols" toml:"cols"`
	Data [][]float64 `yaml:"data" toml:"data"`
}

func toDocument(m *matrix.Dense) (document, error) {
	if err := checkWritable(m); err != nil {
		return document{}, err
	}

	return document{Name: m.Name(), Rows: m.Rows(), Cols: m.Cols(), Data: m.ToRows()}, nil
}

func (d document) toDense() (*matrix.Dense, error) {
	if len(d.Data) != d.Rows {
		return nil, fmt.Errorf("%w: %s: %d data rows, header says %d", ErrMalformed, d.Name, len(d.Data), d.Rows)
	}
	for i, row := range d.Data {
		if len(row) != d.Cols {
			return nil, fmt.Errorf("%w: %s: row %d has %d values, header says %d", ErrMalformed, d.Name, i, len(row), d.Cols)
		}
	}
	m, err := matrix.FromRows(d.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, d.Name, err)
	}
	if err = m.SetName(d.Name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return m, nil
}

// ReadYAML decodes one YAML matrix document.
func ReadYAML(r io.Reader) (*matrix.Dense, error) {
	var d document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrMalformed, err)
	}

	return d.toDense()
}

// WriteYAML encodes m as a YAML document.
func WriteYAML(w io.Writer, m *matrix.Dense) error {
	d, err := toDocument(m)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err = enc.Encode(d); err != nil {
		return err
	}

	return enc.Close()
}

// ReadTOML decodes one TOML matrix document.
func ReadTOML(r io.Reader) (*matrix.Dense, error) {
	var d document
	if _, err := toml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: toml: %v", ErrMalformed, err)
	}

	return d.toDense()
}

// WriteTOML encodes m as a TOML document.
func WriteTOML(w io.Writer, m *matrix.Dense) error {
	d, err := toDocument(m)
	if err != nil {
		return err
	}

	return toml.NewEncoder(w).Encode(d)
}
