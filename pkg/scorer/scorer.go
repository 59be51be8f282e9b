package score

import (
	"math"
	"strings"
)

// Weights defines the relative importance of each scoring factor.
type Weights struct {
	Name     float64
	Category float64
	Country  float64
	Checksum float64
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Name:     0.40,
		Category: 0.25,
		Country:  0.20,
		Checksum: 0.15,
	}
}

// ProductData holds the fields needed for scoring (decoupled from DB model).
type ProductData struct {
	Name           string
	CategoryID     string
	CategoryName   string
	IssuingCountry string
	ChecksumValid  bool
}

// Breakdown shows per-factor scores.
type Breakdown struct {
	Name     float64 `json:"name"`
	Category float64 `json:"category"`
	Country  float64 `json:"country"`
	Checksum float64 `json:"checksum"`
	Total    int     `json:"total"`
}

// Score computes the composite data quality score for a product record.
// A high score means the record is complete and descriptive enough to act
// on; a low score flags thin or placeholder data.
func Score(data ProductData, w Weights) Breakdown {
	b := Breakdown{}

	b.Name = nameScore(data.Name)
	b.Category = categoryScore(data)
	b.Country = countryScore(data.IssuingCountry)
	b.Checksum = checksumScore(data.ChecksumValid)

	// Weighted composite
	total := b.Name*w.Name +
		b.Category*w.Category +
		b.Country*w.Country +
		b.Checksum*w.Checksum

	b.Total = int(math.Round(total))
	if b.Total > 100 {
		b.Total = 100
	}
	if b.Total < 0 {
		b.Total = 0
	}

	return b
}

// nameScore evaluates how descriptive the product name is.
// Length tiers approximate completeness; multi-word names read like real
// titles rather than vendor stock codes.
func nameScore(name string) float64 {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}

	score := 0.0
	switch {
	case len(name) >= 40:
		score = 80
	case len(name) >= 20:
		score = 65
	case len(name) >= 10:
		score = 45
	default:
		score = 25
	}

	if len(strings.Fields(name)) >= 3 {
		score += 20
	}

	return math.Min(score, 100)
}

// categoryScore rewards fully classified records.
func categoryScore(d ProductData) float64 {
	switch {
	case d.CategoryID != "" && d.CategoryName != "":
		return 100
	case d.CategoryName != "":
		return 70
	case d.CategoryID != "":
		return 40
	default:
		return 0
	}
}

// countryScore checks the issuing country annotation.
func countryScore(country string) float64 {
	country = strings.TrimSpace(country)
	switch {
	case country == "":
		return 0
	case len(country) == 2 && country == strings.ToUpper(country):
		return 100
	default:
		// Free-text region such as "inside UK" still carries signal.
		return 60
	}
}

// checksumScore is binary: the barcode either verifies or it does not.
func checksumScore(valid bool) float64 {
	if valid {
		return 100
	}
	return 0
}
