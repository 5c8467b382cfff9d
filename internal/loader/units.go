// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"errors"
	"fmt"
)

// ErrUnknownUnit aborts the reconciliation of the product that carried
// the unit. Storing a price against a guessed unit would silently corrupt
// the price basis, so there is deliberately no fallback.
var ErrUnknownUnit = errors.New("unknown unit code")

// ConvertUnit maps a marketplace unit code to its UN/CEFACT equivalent
func ConvertUnit(sourceUnit string) (string, error) {
	switch sourceUnit {
	case "kg":
		return "KGM", nil
	case "l":
		return "LTR", nil
	case "stk":
		return "C62", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, sourceUnit)
	}
}

// PieceUnit is the fixed unit every offering price is expressed against
const PieceUnit = "C62"

// Currency for all marketplace prices
const Currency = "EUR"
