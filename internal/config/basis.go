// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvshape/shapelet"
)

// BasisFile is the YAML form of a MultiShapeletBasis:
//
//	size: 2
//	components:
//	  - radius: 0.5
//	    order: 1
//	    matrix:
//	      - [1, 0]
//	      - [0, 1]
//	      - [0, 0]
//
// Each matrix has ComputeSize(order) rows of size entries. The same layout is
// accepted as TOML ([[components]] tables) for files ending in .toml.
type BasisFile struct {
	Size       int              `yaml:"size" toml:"size"`
	Normalize  bool             `yaml:"normalize" toml:"normalize"`
	Components []BasisComponent `yaml:"components" toml:"components"`
}

// BasisComponent is one sub-basis entry.
type BasisComponent struct {
	Radius float64     `yaml:"radius" toml:"radius"`
	Order  int         `yaml:"order" toml:"order"`
	Matrix [][]float64 `yaml:"matrix" toml:"matrix"`
}

// LoadBasis reads and builds the basis at path, decoding TOML for a .toml
// extension and YAML otherwise.
func LoadBasis(path string) (*shapelet.MultiShapeletBasis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read basis: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseBasisTOML(data)
	}
	return ParseBasis(data)
}

// ParseBasis decodes a YAML basis description.
func ParseBasis(data []byte) (*shapelet.MultiShapeletBasis, error) {
	var f BasisFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse basis: %w", err)
	}
	return f.Build()
}

// ParseBasisTOML decodes a TOML basis description.
func ParseBasisTOML(data []byte) (*shapelet.MultiShapeletBasis, error) {
	var f BasisFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse basis: %w", err)
	}
	return f.Build()
}

// Build converts the decoded file into a basis, validating every component.
func (f BasisFile) Build() (*shapelet.MultiShapeletBasis, error) {
	basis, err := shapelet.NewMultiShapeletBasis(f.Size)
	if err != nil {
		return nil, err
	}
	if len(f.Components) == 0 {
		return nil, fmt.Errorf("%w: basis has no components", ErrInvalidConfig)
	}
	for i, c := range f.Components {
		m, err := denseFromRows(c.Matrix, f.Size)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		if err = basis.AddComponent(c.Radius, c.Order, m); err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
	}
	if f.Normalize {
		if err = basis.Normalize(); err != nil {
			return nil, err
		}
	}
	return basis, nil
}

func denseFromRows(rows [][]float64, cols int) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidConfig)
	}
	data := make([]float64, 0, len(rows)*cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrInvalidConfig, r, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}
