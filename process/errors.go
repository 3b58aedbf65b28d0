// SPDX-License-Identifier: MIT

package process

import "errors"

var (
	// ErrUnknownDataset is returned when no rule matches a dataset name.
	// Classification never falls back to a default process.
	ErrUnknownDataset = errors.New("process: unknown dataset")

	// ErrInvalidTable indicates an empty table, an empty process name, a rule
	// without patterns, or a malformed pattern.
	ErrInvalidTable = errors.New("process: invalid classification table")
)
