// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "thcov"

// Registry returns a fresh registry holding the gauges of s. Every series is
// labelled with the run id and the prescription.
func Registry(s *Summary) (*prometheus.Registry, error) {
	labels := prometheus.Labels{"run_id": s.RunID, "prescription": s.Prescription}
	gauge := func(name, help string, v float64) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(v)
		return g
	}

	eigen := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "eigenvalue",
		Help:        "Eigenvalues of the projected normalized theory covariance, rank 1 largest.",
		ConstLabels: labels,
	}, []string{"rank"})
	for _, r := range s.Eigen {
		eigen.WithLabelValues(strconv.Itoa(r.Rank)).Set(float64(r.Eigenvalue))
	}

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		gauge("efficiency", "Fraction of the reference shift captured by the eigenvectors.", float64(s.Efficiency)),
		gauge("theory_chi2", "Reference shift chi2 against the theory eigenvalues.", float64(s.TheoryChi2)),
		gauge("subspace_dimension", "Number of eigenvectors in the combination-vector subspace.", float64(s.Subspace)),
		gauge("shift_norm", "Euclidean norm of the relative reference shift.", float64(s.ShiftNorm)),
		gauge("missed_norm", "Euclidean norm of the uncaptured part of the shift.", float64(s.MissedNorm)),
		eigen,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("report: register: %w", err)
		}
	}

	return reg, nil
}

// WriteMetrics writes the gauges of s to path in the Prometheus text format,
// for pickup by a node-exporter textfile collector.
func WriteMetrics(path string, s *Summary) error {
	reg, err := Registry(s)
	if err != nil {
		return err
	}
	if err = prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("report: write metrics: %w", err)
	}

	return nil
}
