// SPDX-License-Identifier: MIT

package pipeline_test

import (
	"fmt"

	"github.com/katalvlaran/thcov/labeled"
	"github.com/katalvlaran/thcov/matrix"
	"github.com/katalvlaran/thcov/pipeline"
	"github.com/katalvlaran/thcov/prescription"
)

// ExampleRun validates a 3-point covariance on two processes with two
// points each.
func ExampleRun() {
	ix, _ := labeled.IndexFromLengths([]string{"NMC", "DYE886R"}, []int{2, 2})
	vec := func(xs ...float64) *labeled.Vector {
		v, _ := labeled.NewVector(ix, xs)
		return v
	}
	id, _ := matrix.NewIdentity(4)
	cov, _ := labeled.NewMatrix(ix, id)

	res, err := pipeline.Run(pipeline.Inputs{
		Central:     vec(1, 1, 1, 1),
		ScaleVaried: []*labeled.Vector{vec(0.95, 0.96, 0.97, 0.94), vec(1.04, 1.05, 1.02, 1.03)},
		Covariance:  cov,
		Shift:       vec(0.1, -0.05, 0.2, 0),
	}, pipeline.Config{Prescription: prescription.Spec{Points: 3}})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, label := range res.Labels {
		fmt.Println(label)
	}
	fmt.Println("subspace:", len(res.Projection.Eigenvalues))
	// Output:
	// sum(pp)
	// flip(pp,mm)[DIS NC]
	// flip(pp,mm)[DY]
	// subspace: 3
}
