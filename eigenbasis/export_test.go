// SPDX-License-Identifier: MIT

package eigenbasis

// CheckDecomposition exposes checkDecomposition to the external tests.
var CheckDecomposition = checkDecomposition
