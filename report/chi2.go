// SPDX-License-Identifier: MIT

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/katalvlaran/thcov/stats"
)

// Chi2Row is the χ² summary of one dataset, or of the total.
type Chi2Row struct {
	Name        string `json:"name"`
	NPoints     int    `json:"npoints"`
	Chi2        Float  `json:"central_chi2"`
	Chi2PerData Float  `json:"chi2_per_data"`
	ReplicaMean Float  `json:"perreplica_mean"`
	ReplicaStd  Float  `json:"perreplica_std"`
	// Phi is NaN when the replica spread is below the central χ².
	Phi Float `json:"phi"`
}

// NewChi2Row summarizes d under name.
func NewChi2Row(name string, d stats.Chi2Data) Chi2Row {
	s := stats.Summarize(d)
	phi, err := stats.Phi(d)
	if err != nil {
		phi = math.NaN()
	}

	return Chi2Row{
		Name:        name,
		NPoints:     s.NPoints,
		Chi2:        Float(s.CentralMean),
		Chi2PerData: Float(s.Chi2PerData),
		ReplicaMean: Float(s.PerReplicaMean),
		ReplicaStd:  Float(s.PerReplicaStd),
		Phi:         Float(phi),
	}
}

// WriteChi2Text writes one aligned row per entry.
func WriteChi2Text(w io.Writer, rows []Chi2Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tnpoints\tchi2\tchi2/n\treplica mean\treplica std\tphi")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n", r.Name, r.NPoints,
			float64(r.Chi2), float64(r.Chi2PerData), float64(r.ReplicaMean), float64(r.ReplicaStd), float64(r.Phi))
	}

	return tw.Flush()
}

// WriteChi2 dispatches on "text" or "json".
func WriteChi2(w io.Writer, rows []Chi2Row, format string) error {
	switch format {
	case "", "text":
		return WriteChi2Text(w, rows)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	return fmt.Errorf("report: unknown format %q", format)
}
