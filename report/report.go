// SPDX-License-Identifier: MIT

// Package report renders validation results as aligned text tables, JSON
// documents and Prometheus textfile metrics.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/katalvlaran/thcov/pipeline"
)

// ErrNilResult is returned when there is nothing to report.
var ErrNilResult = errors.New("report: nil result")

// Float is a float64 whose JSON form keeps ±Inf and NaN as strings.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}

	return json.Marshal(v)
}

// EigenRow is one eigenpair, largest eigenvalue first.
type EigenRow struct {
	Rank       int   `json:"rank"`
	Eigenvalue Float `json:"eigenvalue"`
	S          Float `json:"s"`
	Delta      Float `json:"delta"`
	Ratio      Float `json:"ratio"`
}

// PointRow is the shift and its uncaptured part at one data point.
type PointRow struct {
	Dataset string `json:"dataset"`
	Point   int    `json:"point"`
	Shift   Float  `json:"shift"`
	Missed  Float  `json:"missed"`
}

// Summary is the reportable view of a pipeline.Result.
type Summary struct {
	RunID        string     `json:"run_id"`
	Prescription string     `json:"prescription"`
	Processes    []string   `json:"processes"`
	Vectors      []string   `json:"vectors"`
	Subspace     int        `json:"subspace_dimension"`
	Efficiency   Float      `json:"efficiency"`
	TheoryChi2   Float      `json:"theory_chi2"`
	ShiftNorm    Float      `json:"shift_norm"`
	MissedNorm   Float      `json:"missed_norm"`
	Eigen        []EigenRow `json:"eigenvalues"`
	// SubspaceMatrix is the projected k×k covariance Bᵀ·C·B in basis order.
	SubspaceMatrix [][]float64 `json:"subspace_matrix"`
	Points         []PointRow  `json:"points"`
	Warnings       []string    `json:"warnings,omitempty"`
}

// New builds a Summary with a fresh run id.
func New(res *pipeline.Result) (*Summary, error) {
	if res == nil || res.Validation == nil {
		return nil, ErrNilResult
	}
	val := res.Validation
	eff, err := val.Efficiency()
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	s := &Summary{
		RunID:        uuid.NewString(),
		Prescription: res.Spec.String(),
		Vectors:      append([]string(nil), res.Labels...),
		Subspace:     len(val.Eigenvalues),
		Efficiency:   Float(eff),
		TheoryChi2:   Float(val.TheoryChi2()),
		ShiftNorm:    Float(val.ShiftNorm()),
		MissedNorm:   Float(val.MissedNorm()),
	}
	if res.Projection != nil && res.Projection.Subspace != nil {
		sub := res.Projection.Subspace
		for i := 0; i < sub.Rows(); i++ {
			row, _ := sub.Row(i) // i < Rows
			s.SubspaceMatrix = append(s.SubspaceMatrix, row)
		}
	}
	for _, g := range res.Groups {
		s.Processes = append(s.Processes, string(g.Process))
	}
	for _, r := range val.EigenvalueTable() {
		s.Eigen = append(s.Eigen, EigenRow{
			Rank:       r.Rank,
			Eigenvalue: Float(r.Eigenvalue),
			S:          Float(r.S),
			Delta:      Float(r.Delta),
			Ratio:      Float(r.Ratio),
		})
	}
	ix := val.Shift.Index()
	for i := 0; i < ix.Len(); i++ {
		k := ix.Key(i)
		s.Points = append(s.Points, PointRow{
			Dataset: k.Dataset,
			Point:   k.Point,
			Shift:   Float(val.Shift.At(i)),
			Missed:  Float(val.Missed.At(i)),
		})
	}
	for _, w := range val.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}

	return s, nil
}

// WriteJSON writes s as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(s)
}

// WriteText writes the header, the eigenvalue table and the per-point table.
func (s *Summary) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", s.RunID)
	fmt.Fprintf(tw, "prescription\t%s\n", s.Prescription)
	fmt.Fprintf(tw, "processes\t%s\n", strings.Join(s.Processes, ", "))
	fmt.Fprintf(tw, "subspace dimension\t%d\n", s.Subspace)
	fmt.Fprintf(tw, "efficiency\t%.6f\n", float64(s.Efficiency))
	fmt.Fprintf(tw, "theory chi2\t%.6g\n", float64(s.TheoryChi2))
	fmt.Fprintf(tw, "|shift|\t%.6g\n", float64(s.ShiftNorm))
	fmt.Fprintf(tw, "|missed|\t%.6g\n", float64(s.MissedNorm))
	for _, warn := range s.Warnings {
		fmt.Fprintf(tw, "warning\t%s\n", warn)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "rank\teigenvalue\ts\tdelta\tdelta/s\t")
	for _, r := range s.Eigen {
		fmt.Fprintf(tw, "%d\t%.6g\t%.6g\t%.6g\t%.4f\t\n",
			r.Rank, float64(r.Eigenvalue), float64(r.S), float64(r.Delta), float64(r.Ratio))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "dataset\tpoint\tshift\tmissed")
	for _, p := range s.Points {
		fmt.Fprintf(tw, "%s\t%d\t%.6g\t%.6g\n", p.Dataset, p.Point, float64(p.Shift), float64(p.Missed))
	}

	return tw.Flush()
}

// WriteFormat dispatches on "text" or "json".
func (s *Summary) WriteFormat(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return s.WriteText(w)
	case "json":
		return s.WriteJSON(w)
	}

	return fmt.Errorf("report: unknown format %q", format)
}
