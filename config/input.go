// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/thcov/labeled"
	"github.com/katalvlaran/thcov/matrix"
	"github.com/katalvlaran/thcov/pipeline"
)

// ErrInvalidInput is returned for structurally inconsistent input files.
var ErrInvalidInput = errors.New("config: invalid input")

// DatasetInput holds the per-point arrays of one dataset. All slices have one
// entry per data point; ScaleVaried has one row per prescription direction.
type DatasetInput struct {
	Name        string      `yaml:"name"`
	Central     []float64   `yaml:"central"`
	ScaleVaried [][]float64 `yaml:"scale_varied"`
	ShiftBase   []float64   `yaml:"shift_base"`
	ShiftTarget []float64   `yaml:"shift_target"`
	// Data and Replicas are only needed for χ² estimators.
	Data     []float64   `yaml:"data,omitempty"`
	Replicas [][]float64 `yaml:"replicas,omitempty"`
}

// Input is the content of an input file. Covariance and DataCovariance are
// over the concatenation of Datasets in file order.
//
//	datasets:
//	  - name: NMC
//	    central: [1.02, 0.98]
//	    scale_varied: [[1.01, 0.97], [1.03, 0.99]]
//	    shift_base: [1.02, 0.98]
//	    shift_target: [1.05, 0.97]
//	covariance: [[...], [...]]
type Input struct {
	Datasets       []DatasetInput `yaml:"datasets"`
	Covariance     [][]float64    `yaml:"covariance"`
	DataCovariance [][]float64    `yaml:"data_covariance,omitempty"`
}

// ParseInput decodes an input document and checks its shape.
func ParseInput(data []byte) (*Input, error) {
	var in Input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("config: parse input: %w", err)
	}
	if _, err := in.Index(); err != nil {
		return nil, err
	}

	return &in, nil
}

// LoadInput reads and parses an input file.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	in, err := ParseInput(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return in, nil
}

// Index builds the (dataset, point) index from the lengths of Central.
func (in *Input) Index() (*labeled.Index, error) {
	if len(in.Datasets) == 0 {
		return nil, fmt.Errorf("config: no datasets: %w", ErrInvalidInput)
	}
	names := make([]string, len(in.Datasets))
	lengths := make([]int, len(in.Datasets))
	for i, ds := range in.Datasets {
		names[i], lengths[i] = ds.Name, len(ds.Central)
	}
	ix, err := labeled.IndexFromLengths(names, lengths)
	if err != nil {
		return nil, fmt.Errorf("config: %v: %w", err, ErrInvalidInput)
	}

	return ix, nil
}

// Pipeline assembles the pipeline inputs. Every dataset must provide the same
// number of scale variations.
func (in *Input) Pipeline() (pipeline.Inputs, error) {
	ix, err := in.Index()
	if err != nil {
		return pipeline.Inputs{}, err
	}
	nvar := len(in.Datasets[0].ScaleVaried)
	for _, ds := range in.Datasets {
		if len(ds.ScaleVaried) != nvar {
			return pipeline.Inputs{}, fmt.Errorf("config: %s: %d scale variations, want %d: %w",
				ds.Name, len(ds.ScaleVaried), nvar, ErrInvalidInput)
		}
	}

	var out pipeline.Inputs
	if out.Central, err = in.concat(ix, "central", func(ds DatasetInput) []float64 { return ds.Central }); err != nil {
		return pipeline.Inputs{}, err
	}
	out.ScaleVaried = make([]*labeled.Vector, nvar)
	for k := 0; k < nvar; k++ {
		field := fmt.Sprintf("scale_varied[%d]", k)
		if out.ScaleVaried[k], err = in.concat(ix, field, func(ds DatasetInput) []float64 { return ds.ScaleVaried[k] }); err != nil {
			return pipeline.Inputs{}, err
		}
	}
	if out.ShiftBase, err = in.concat(ix, "shift_base", func(ds DatasetInput) []float64 { return ds.ShiftBase }); err != nil {
		return pipeline.Inputs{}, err
	}
	if out.ShiftTarget, err = in.concat(ix, "shift_target", func(ds DatasetInput) []float64 { return ds.ShiftTarget }); err != nil {
		return pipeline.Inputs{}, err
	}
	if out.Covariance, err = square(ix, "covariance", in.Covariance); err != nil {
		return pipeline.Inputs{}, err
	}

	return out, nil
}

// Chi2Input is the experimental side of an input file.
type Chi2Input struct {
	Data       *labeled.Vector
	Covariance *labeled.Matrix
	// Replicas are rows over the full index.
	Replicas [][]float64
}

// Chi2 assembles data, data covariance and replica predictions. Every
// dataset must provide the same number of replicas.
func (in *Input) Chi2() (*Chi2Input, error) {
	ix, err := in.Index()
	if err != nil {
		return nil, err
	}
	out := &Chi2Input{}
	if out.Data, err = in.concat(ix, "data", func(ds DatasetInput) []float64 { return ds.Data }); err != nil {
		return nil, err
	}
	if out.Covariance, err = square(ix, "data_covariance", in.DataCovariance); err != nil {
		return nil, err
	}

	nrep := len(in.Datasets[0].Replicas)
	if nrep == 0 {
		return nil, fmt.Errorf("config: %s: no replicas: %w", in.Datasets[0].Name, ErrInvalidInput)
	}
	out.Replicas = make([][]float64, nrep)
	for r := 0; r < nrep; r++ {
		row := make([]float64, 0, ix.Len())
		for _, ds := range in.Datasets {
			if len(ds.Replicas) != nrep {
				return nil, fmt.Errorf("config: %s: %d replicas, want %d: %w", ds.Name, len(ds.Replicas), nrep, ErrInvalidInput)
			}
			if len(ds.Replicas[r]) != len(ds.Central) {
				return nil, fmt.Errorf("config: %s: replica %d: %w", ds.Name, r, ErrInvalidInput)
			}
			row = append(row, ds.Replicas[r]...)
		}
		out.Replicas[r] = row
	}

	return out, nil
}

// concat joins one per-dataset field into a vector over ix.
func (in *Input) concat(ix *labeled.Index, field string, get func(DatasetInput) []float64) (*labeled.Vector, error) {
	values := make([]float64, 0, ix.Len())
	for _, ds := range in.Datasets {
		xs := get(ds)
		if len(xs) != len(ds.Central) {
			return nil, fmt.Errorf("config: %s.%s: %d values, want %d: %w", ds.Name, field, len(xs), len(ds.Central), ErrInvalidInput)
		}
		values = append(values, xs...)
	}

	return labeled.NewVector(ix, values)
}

func square(ix *labeled.Index, field string, rows [][]float64) (*labeled.Matrix, error) {
	if len(rows) != ix.Len() {
		return nil, fmt.Errorf("config: %s: %d rows, want %d: %w", field, len(rows), ix.Len(), ErrInvalidInput)
	}
	m, err := matrix.NewDenseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %v: %w", field, err, ErrInvalidInput)
	}
	lm, err := labeled.NewMatrix(ix, m)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %v: %w", field, err, ErrInvalidInput)
	}

	return lm, nil
}
