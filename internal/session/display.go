package session

import (
	"strings"

	"place-lookup/internal/models"
)

// Display renders a place for the input surface according to its class.
// A nil place renders as "".
func Display(p *models.Place) string {
	if p == nil {
		return ""
	}
	switch p.Class {
	case models.ClassStreet:
		return join(p.Name, p.Postcode, p.District)
	case models.ClassLocation:
		return join(p.Name, address(p), p.Postcode, p.District)
	default: // house numbers
		return join(address(p), p.Postcode, p.District)
	}
}

func address(p *models.Place) string {
	return strings.TrimSpace(p.Street + " " + p.HouseNumber)
}

// join concatenates the non-empty parts with ", ".
func join(parts ...string) string {
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}
