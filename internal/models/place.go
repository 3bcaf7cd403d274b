package models

// Place classes as reported by the places backend.
const (
	ClassStreet      = "street"
	ClassLocation    = "location"
	ClassHouseNumber = "houseNumber"
)

// Place represents one candidate place or address as returned by the places
// backend. Any locality attribute may be empty, meaning "not applicable".
type Place struct {
	ID            string  `json:"id"`
	Class         string  `json:"class"`
	Type          string  `json:"type,omitempty"`
	Name          string  `json:"name,omitempty"`
	Street        string  `json:"street,omitempty"`
	StreetID      string  `json:"streetID,omitempty"`
	HouseNumber   string  `json:"houseNumber,omitempty"`
	Postcode      string  `json:"postcode,omitempty"`
	District      string  `json:"district,omitempty"`
	Neighbourhood string  `json:"neighbourhood,omitempty"`
	Boundary      string  `json:"boundary,omitempty"`
	City          string  `json:"city,omitempty"`
	Length        int     `json:"length,omitempty"`
	Lat           float64 `json:"lat,omitempty"`
	Lon           float64 `json:"lon,omitempty"`
	Relevance     uint64  `json:"relevance,omitempty"`
	OSM           string  `json:"osm,omitempty"`

	// Disc is the discriminator computed for the batch the place arrived in.
	// It is never part of the backend payload.
	Disc string `json:"disc"`
}

// Batch is the ordered list of places returned for one query. The order is
// the backend's ranking and must be preserved.
type Batch []*Place

// Suggestion is the wire wrapper used by the completion endpoint.
type Suggestion struct {
	Distance int    `json:"distance"`
	Place    *Place `json:"place"`
}
