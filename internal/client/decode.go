package client

import (
	"github.com/tidwall/gjson"

	"place-lookup/internal/models"
)

// decodePlace reads a place object. IDs are kept opaque: the backend may send
// them as numbers or strings.
func decodePlace(r gjson.Result) *models.Place {
	return &models.Place{
		ID:            r.Get("id").String(),
		Class:         r.Get("class").String(),
		Type:          r.Get("type").String(),
		Name:          r.Get("name").String(),
		Street:        r.Get("street").String(),
		StreetID:      r.Get("streetID").String(),
		HouseNumber:   r.Get("houseNumber").String(),
		Postcode:      r.Get("postcode").String(),
		District:      r.Get("district").String(),
		Neighbourhood: r.Get("neighbourhood").String(),
		Boundary:      r.Get("boundary").String(),
		City:          r.Get("city").String(),
		Length:        int(r.Get("length").Int()),
		Lat:           r.Get("lat").Float(),
		Lon:           r.Get("lon").Float(),
		Relevance:     r.Get("relevance").Uint(),
		OSM:           r.Get("osm").String(),
	}
}

// decodeBatch reads the completion array. Elements either wrap the place in a
// "place" member or are the place itself.
func decodeBatch(body []byte) (models.Batch, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, false
	}

	batch := models.Batch{}
	root.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		if p := item.Get("place"); p.IsObject() {
			batch = append(batch, decodePlace(p))
			return true
		}
		batch = append(batch, decodePlace(item))
		return true
	})
	return batch, true
}
