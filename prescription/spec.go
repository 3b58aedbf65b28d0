// SPDX-License-Identifier: MIT

// Package prescription builds the linearly independent combination vectors
// that span a scale-variation theory covariance matrix.
//
// A Spec selects the point prescription (3, 5, 7 or 9 points plus a variant).
// Each prescription consumes Points-1 raw shift vectors, one per scale
// direction, and combines their per-process splits with a fixed table of
// signed-sum families. See Build for the tables.
package prescription

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedPrescription is returned for (points, variant) pairs with
	// no defined vector construction, including the 7-point "original" variant.
	ErrUnsupportedPrescription = errors.New("prescription: unsupported prescription")

	// ErrShiftCount indicates that the number of raw shifts is not Points-1.
	ErrShiftCount = errors.New("prescription: wrong number of shift vectors")

	// ErrNoProcesses is returned when no process has a data point in the index.
	ErrNoProcesses = errors.New("prescription: no processes with data points")
)

// Variant selects among alternative conventions of one arity.
type Variant string

// Supported variants.
const (
	VariantNone     Variant = ""
	VariantBar      Variant = "bar"
	VariantNoBar    Variant = "nobar"
	VariantOriginal Variant = "original"
	VariantExtended Variant = "extended"
)

// Direction names a scale variation (μ_F; μ_R) as two characters from
// {p, m, z}: plus, minus or zero. For example "mz" is (−; 0).
type Direction string

// Scale directions.
const (
	PP Direction = "pp"
	MM Direction = "mm"
	PM Direction = "pm"
	MP Direction = "mp"
	PZ Direction = "pz"
	MZ Direction = "mz"
	ZP Direction = "zp"
	ZM Direction = "zm"
)

// Spec identifies a point prescription. The zero value is invalid.
type Spec struct {
	Points  int     `yaml:"points" json:"points"`
	Variant Variant `yaml:"variant" json:"variant"`
}

// Supported lists every buildable prescription in a stable order.
func Supported() []Spec {
	return []Spec{
		{Points: 3},
		{Points: 5, Variant: VariantNoBar},
		{Points: 5, Variant: VariantBar},
		{Points: 7},
		{Points: 9},
		{Points: 9, Variant: VariantExtended},
	}
}

// String renders s as "<points>pt" or "<points>pt-<variant>".
func (s Spec) String() string {
	if s.Variant == VariantNone {
		return fmt.Sprintf("%dpt", s.Points)
	}

	return fmt.Sprintf("%dpt-%s", s.Points, s.Variant)
}

// ParseSpec is the inverse of String. The result is validated.
func ParseSpec(text string) (Spec, error) {
	head, variant, _ := strings.Cut(strings.TrimSpace(text), "-")
	n, err := strconv.Atoi(strings.TrimSuffix(head, "pt"))
	if err != nil {
		return Spec{}, fmt.Errorf("ParseSpec(%q): %w", text, ErrUnsupportedPrescription)
	}
	s := Spec{Points: n, Variant: Variant(variant)}
	if err = s.Validate(); err != nil {
		return Spec{}, err
	}

	return s, nil
}

// Validate returns ErrUnsupportedPrescription unless s is in Supported().
func (s Spec) Validate() error {
	_, err := s.families()
	return err
}

// Directions returns the direction of each raw shift, in input order.
// The length is always Points-1.
func (s Spec) Directions() ([]Direction, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch {
	case s.Points == 3:
		return []Direction{PP, MM}, nil
	case s.Points == 5 && s.Variant == VariantNoBar:
		return []Direction{PZ, MZ, ZP, ZM}, nil
	case s.Points == 5:
		return []Direction{PP, MM, PM, MP}, nil
	case s.Points == 7:
		return []Direction{PZ, MZ, ZP, ZM, PP, MM}, nil
	default:
		return []Direction{PZ, MZ, ZP, ZM, PP, MM, PM, MP}, nil
	}
}

// VectorCount returns the number of combination vectors Build emits for
// the given number of processes.
func (s Spec) VectorCount(processes int) (int, error) {
	fams, err := s.families()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, f := range fams {
		if f.perProcess() {
			n += processes
		} else {
			n++
		}
	}

	return n, nil
}
