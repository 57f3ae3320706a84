// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

// Package xp aggregates experience points from database records and
// converts the total into level progress.
package xp

import (
	"math"

	"github.com/gradusapp/gradus/internal/notion"
)

// Sum totals the named numeric property across all records. Records where
// the property is missing, null, or of an unrecognized type contribute zero.
func Sum(pages []notion.Page, property string) float64 {
	var total float64
	for _, page := range pages {
		total += page.Properties[property].NumericValue()
	}
	return total
}

// Progress converts a total into level progress against a fixed
// points-per-level divisor.
//
// level is the number of whole levels completed, remainder the points
// accumulated toward the next level, and percent the remainder expressed
// as a percentage of pointsPerLevel. A total that lands exactly on a level
// boundary yields remainder 0 and percent 0: the gauge resets rather than
// showing a full ring.
func Progress(total float64, pointsPerLevel int) (level int, remainder float64, percent float64) {
	p := float64(pointsPerLevel)
	level = int(math.Floor(total / p))
	remainder = total - float64(level)*p
	percent = remainder / p * 100
	return level, remainder, percent
}
