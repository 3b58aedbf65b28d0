// SPDX-License-Identifier: MIT

package prescription

import (
	"fmt"

	"github.com/katalvlaran/thcov/labeled"
	"github.com/katalvlaran/thcov/process"
)

// family is one row of a prescription table.
//   - flip == "": a single vector Σ_p split(base, p).
//   - flip != "": one vector per process p,
//     Σ_{q≠p} split(base, q) + split(flip, p).
type family struct {
	base Direction
	flip Direction
}

func sum(d Direction) family     { return family{base: d} }
func flip(b, f Direction) family { return family{base: b, flip: f} }

func (f family) perProcess() bool { return f.flip != "" }

func (f family) String() string {
	if f.perProcess() {
		return fmt.Sprintf("flip(%s,%s)", f.base, f.flip)
	}

	return fmt.Sprintf("sum(%s)", f.base)
}

// families returns the emission table for s.
func (s Spec) families() ([]family, error) {
	switch {
	case s.Points == 3 && s.Variant == VariantNone:
		return []family{sum(PP), flip(PP, MM)}, nil
	case s.Points == 5 && s.Variant == VariantNoBar:
		return []family{sum(PZ), sum(MZ), sum(ZP), flip(ZP, ZM)}, nil
	case s.Points == 5 && s.Variant == VariantBar:
		return []family{sum(PP), sum(MP), flip(PP, PM), flip(MP, MM)}, nil
	case s.Points == 7 && s.Variant == VariantNone:
		return []family{
			sum(PP), flip(PP, MM),
			sum(PZ), sum(MZ), sum(ZP), flip(ZP, ZM),
		}, nil
	case s.Points == 9 && s.Variant == VariantNone:
		return []family{
			sum(PP), sum(MP), sum(ZP),
			flip(ZP, ZM), flip(PP, PM), flip(MP, MM), flip(PP, PZ),
		}, nil
	case s.Points == 9 && s.Variant == VariantExtended:
		return []family{
			sum(PP), sum(MP), sum(ZP),
			flip(ZP, ZM), flip(PP, PM), flip(MP, MM), flip(PP, PZ), flip(MP, MZ),
		}, nil
	}

	return nil, fmt.Errorf("%s: %w", s, ErrUnsupportedPrescription)
}

// Build constructs the ordered combination vectors of a prescription.
//
// Implementation:
//   - Stage 1: resolve the family table and check len(shifts) == Points-1
//     and that all shifts share one index.
//   - Stage 2: drop groups without data points in the index; none left is
//     ErrNoProcesses.
//   - Stage 3: split every raw shift per process (zero outside the process).
//   - Stage 4: emit families in table order; per-process families iterate
//     the groups in the given order.
//
// Tables (split(d, p) is raw shift d restricted to process p):
//
//	3pt        sum(pp) flip(pp,mm)                                  1+P
//	5pt-nobar  sum(pz) sum(mz) sum(zp) flip(zp,zm)                  3+P
//	5pt-bar    sum(pp) sum(mp) flip(pp,pm) flip(mp,mm)              2+2P
//	7pt        3pt table followed by the 5pt-nobar table            4+2P
//	9pt        sum(pp) sum(mp) sum(zp)
//	           flip(zp,zm) flip(pp,pm) flip(mp,mm) flip(pp,pz)      3+4P
//	9pt-ext    9pt table followed by flip(mp,mz)                    3+5P
//
// Errors:
//   - ErrUnsupportedPrescription, ErrShiftCount, ErrNoProcesses,
//     labeled.ErrIndexMismatch.
//
// Determinism:
//   - Output order depends only on the table and the group order; it fixes
//     the Gram-Schmidt basis downstream.
//
// Complexity:
//   - Time O(F·P·N) with F families, P processes and N points.
func Build(groups []process.Group, shifts []*labeled.Vector, spec Spec) ([]*labeled.Vector, error) {
	fams, err := spec.families()
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}
	dirs, _ := spec.Directions()
	if len(shifts) != len(dirs) {
		return nil, fmt.Errorf("Build: %s wants %d shifts, got %d: %w", spec, len(dirs), len(shifts), ErrShiftCount)
	}
	ix := shifts[0].Index()
	for _, s := range shifts[1:] {
		if !ix.Equal(s.Index()) {
			return nil, fmt.Errorf("Build: %w", labeled.ErrIndexMismatch)
		}
	}

	live := presentGroups(groups, ix)
	if len(live) == 0 {
		return nil, fmt.Errorf("Build: %w", ErrNoProcesses)
	}

	// split[d][p] = shift of direction d restricted to process p.
	split := make(map[Direction][]*labeled.Vector, len(dirs))
	for k, d := range dirs {
		row := make([]*labeled.Vector, len(live))
		for p, g := range live {
			row[p] = shifts[k].KeepDatasets(g.Datasets)
		}
		split[d] = row
	}

	var out []*labeled.Vector
	for _, f := range fams {
		if !f.perProcess() {
			v, err := labeled.Sum(split[f.base])
			if err != nil {
				return nil, fmt.Errorf("Build: %s: %w", f, err)
			}
			out = append(out, v)
			continue
		}
		for p := range live {
			v, err := flipped(split[f.base], split[f.flip], p)
			if err != nil {
				return nil, fmt.Errorf("Build: %s: %w", f, err)
			}
			out = append(out, v)
		}
	}

	return out, nil
}

// flipped returns Σ_{q≠p} base[q] + alt[p], an explicit indexed rotation
// over the per-process splits.
func flipped(base, alt []*labeled.Vector, p int) (*labeled.Vector, error) {
	terms := make([]*labeled.Vector, 0, len(base))
	for q := range base {
		if q != p {
			terms = append(terms, base[q])
		}
	}
	terms = append(terms, alt[p])

	return labeled.Sum(terms)
}

// presentGroups keeps, per group, only the datasets present in ix and drops
// groups left empty. A process without points would contribute all-zero
// splits and a degenerate combination vector.
func presentGroups(groups []process.Group, ix *labeled.Index) []process.Group {
	var out []process.Group
	for _, g := range groups {
		var ds []string
		for _, d := range g.Datasets {
			if ix.Has(d) {
				ds = append(ds, d)
			}
		}
		if len(ds) > 0 {
			out = append(out, process.Group{Process: g.Process, Datasets: ds})
		}
	}

	return out
}

// Labels names the vectors Build would emit for groups, e.g. "sum(pp)" or
// "flip(pp,mm)[DY]". Groups are used as given; callers pass the same
// groups they pass to Build after excluding processes without points.
func Labels(groups []process.Group, spec Spec) ([]string, error) {
	fams, err := spec.families()
	if err != nil {
		return nil, fmt.Errorf("Labels: %w", err)
	}
	var out []string
	for _, f := range fams {
		if !f.perProcess() {
			out = append(out, f.String())
			continue
		}
		for _, g := range groups {
			out = append(out, fmt.Sprintf("%s[%s]", f, g.Process))
		}
	}

	return out, nil
}

// PresentGroups returns groups restricted to datasets present in ix, dropping
// processes left without datasets. Build applies the same filter.
func PresentGroups(groups []process.Group, ix *labeled.Index) []process.Group {
	return presentGroups(groups, ix)
}
