// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

package notion

// Page is one record returned by a database query. Only the typed
// properties are consumed downstream; the identifier is carried for
// logging and debugging.
type Page struct {
	ID         string                   `json:"id"`
	Properties map[string]PropertyValue `json:"properties"`
}

// PropertyValue is the tagged union Notion uses for database properties.
// Gradus recognizes the "number" and "formula" variants; every other
// variant contributes zero to the XP aggregate.
type PropertyValue struct {
	Type    string   `json:"type"`
	Number  *float64 `json:"number,omitempty"`
	Formula *Formula `json:"formula,omitempty"`
}

// Formula is the wrapper Notion emits for formula-typed properties.
// Only number formulas carry a value this system can use.
type Formula struct {
	Type   string   `json:"type,omitempty"`
	Number *float64 `json:"number,omitempty"`
}

// NumericValue returns the numeric contribution of the property.
// Null values and unrecognized variants degrade to zero, never to an
// error; malformed data must not break the widget.
func (p PropertyValue) NumericValue() float64 {
	switch p.Type {
	case "number":
		if p.Number != nil {
			return *p.Number
		}
	case "formula":
		if p.Formula != nil && p.Formula.Number != nil {
			return *p.Formula.Number
		}
	}
	return 0
}
