// Package disambiguate annotates suggestion batches with the shortest
// discriminator that tells places sharing a name apart.
package disambiguate

import "place-lookup/internal/models"

// level is the amount of locality needed to tell a place from its namesakes.
type level int

const (
	levelNone level = iota
	levelDistrict
	levelPostcodeDistrict
)

// Batch computes Disc for every place in the batch and returns the batch.
// The order of the batch is left untouched.
func Batch(batch models.Batch) models.Batch {
	if len(batch) < 2 {
		for _, p := range batch {
			if p != nil {
				p.Disc = ""
			}
		}
		return batch
	}

	levels := make([]level, len(batch))
	for i := 0; i < len(batch)-1; i++ {
		for j := i + 1; j < len(batch); j++ {
			a, b := batch[i], batch[j]
			if a == nil || b == nil || a.Name != b.Name {
				continue
			}

			// same district (or none at all): district alone won't do
			if a.District == b.District {
				levels[i] = levelPostcodeDistrict
				levels[j] = levelPostcodeDistrict
				continue
			}
			levels[i] = escalate(levels[i], levelDistrict)
			levels[j] = escalate(levels[j], levelDistrict)
		}
	}

	for i, p := range batch {
		if p != nil {
			p.Disc = render(p, levels[i])
		}
	}
	return batch
}

func escalate(current, to level) level {
	if to > current {
		return to
	}
	return current
}

func render(p *models.Place, l level) string {
	if l == levelNone {
		return ""
	}
	if p.District == "" {
		return fallback(p)
	}
	if l == levelDistrict {
		return p.District
	}
	if p.Postcode != "" {
		return p.Postcode + ", " + p.District
	}
	// namesakes share the district, so it only helps as a last resort
	if disc := fallback(p); disc != "" {
		return disc
	}
	return p.District
}

// fallback discriminates places lacking an administrative district, e.g. POIs.
func fallback(p *models.Place) string {
	switch {
	case p.Neighbourhood != "" && p.Boundary != "":
		return p.Neighbourhood + ", " + p.Boundary
	case p.Boundary != "":
		return p.Boundary
	default:
		return p.Postcode
	}
}
