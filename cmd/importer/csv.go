package main

import (
	"fmt"
	"io"

	"place-lookup/internal/models"
	"place-lookup/internal/service"

	"github.com/gocarina/gocsv"
)

type districtRecord struct {
	Postcode string `csv:"postcode"`
	District string `csv:"district"`
}

type streetRecord struct {
	ID       int64   `csv:"id"`
	Name     string  `csv:"name"`
	Postcode string  `csv:"postcode"`
	Lat      float64 `csv:"lat"`
	Lon      float64 `csv:"lon"`
	Length   int     `csv:"length"`
}

type locationRecord struct {
	Type        string  `csv:"type"`
	Name        string  `csv:"name"`
	StreetID    int64   `csv:"street_id"`
	HouseNumber string  `csv:"house_number"`
	Postcode    string  `csv:"postcode"`
	Lat         float64 `csv:"lat"`
	Lon         float64 `csv:"lon"`
}

type houseNumberRecord struct {
	StreetID    int64   `csv:"street_id"`
	HouseNumber string  `csv:"house_number"`
	Postcode    string  `csv:"postcode"`
	Lat         float64 `csv:"lat"`
	Lon         float64 `csv:"lon"`
}

// placeRow is one row of the places table.
type placeRow struct {
	ID          int64
	Class       string
	Type        string
	Name        string
	SimpleName  string
	StreetID    *int64
	HouseNumber string
	Postcode    string
	District    string
	Length      int
	Lat         float64
	Lon         float64
}

func (r placeRow) values() []interface{} {
	return []interface{}{
		r.ID, r.Class, r.Type, r.Name, r.SimpleName, r.StreetID,
		r.HouseNumber, r.Postcode, r.District, r.Length, r.Lat, r.Lon,
	}
}

var placeColumns = []string{
	"id", "class", "type", "name", "simple_name", "street_id",
	"house_number", "postcode", "district", "length", "lat", "lon",
}

// dataset holds the rows to import. Streets come first so that locations and
// house numbers can reference them.
type dataset struct {
	rows         []placeRow
	streets      int
	locations    int
	houseNumbers int
}

// readers groups the four CSV inputs.
type readers struct {
	districts    io.Reader
	streets      io.Reader
	locations    io.Reader
	houseNumbers io.Reader
}

// buildDataset parses the CSV inputs and assigns place ids starting at
// firstID. Street ids of the input are remapped to place ids.
func buildDataset(firstID int64, in readers) (*dataset, error) {
	var districts []*districtRecord
	if err := gocsv.Unmarshal(in.districts, &districts); err != nil {
		return nil, fmt.Errorf("failed to parse districts: %w", err)
	}
	districtOf := make(map[string]string, len(districts))
	for _, d := range districts {
		districtOf[d.Postcode] = d.District
	}

	var streets []*streetRecord
	if err := gocsv.Unmarshal(in.streets, &streets); err != nil {
		return nil, fmt.Errorf("failed to parse streets: %w", err)
	}

	ds := &dataset{}
	nextID := firstID
	placeOf := make(map[int64]int64, len(streets))
	for _, s := range streets {
		ds.rows = append(ds.rows, placeRow{
			ID:         nextID,
			Class:      models.ClassStreet,
			Name:       s.Name,
			SimpleName: service.SimplifyName(s.Name),
			Postcode:   s.Postcode,
			District:   districtOf[s.Postcode],
			Length:     s.Length,
			Lat:        s.Lat,
			Lon:        s.Lon,
		})
		placeOf[s.ID] = nextID
		nextID++
		ds.streets++
	}

	streetRef := func(kind string, line int, streetID int64) (*int64, error) {
		id, ok := placeOf[streetID]
		if !ok {
			return nil, fmt.Errorf("%s %d: unknown street id %d", kind, line, streetID)
		}
		return &id, nil
	}

	if in.locations != nil {
		var locations []*locationRecord
		if err := gocsv.Unmarshal(in.locations, &locations); err != nil {
			return nil, fmt.Errorf("failed to parse locations: %w", err)
		}
		for i, l := range locations {
			ref, err := streetRef("location", i+1, l.StreetID)
			if err != nil {
				return nil, err
			}
			ds.rows = append(ds.rows, placeRow{
				ID:          nextID,
				Class:       models.ClassLocation,
				Type:        l.Type,
				Name:        l.Name,
				SimpleName:  service.SimplifyName(l.Name),
				StreetID:    ref,
				HouseNumber: l.HouseNumber,
				Postcode:    l.Postcode,
				District:    districtOf[l.Postcode],
				Lat:         l.Lat,
				Lon:         l.Lon,
			})
			nextID++
			ds.locations++
		}
	}

	if in.houseNumbers != nil {
		var houseNumbers []*houseNumberRecord
		if err := gocsv.Unmarshal(in.houseNumbers, &houseNumbers); err != nil {
			return nil, fmt.Errorf("failed to parse house numbers: %w", err)
		}
		for i, h := range houseNumbers {
			ref, err := streetRef("house number", i+1, h.StreetID)
			if err != nil {
				return nil, err
			}
			ds.rows = append(ds.rows, placeRow{
				ID:          nextID,
				Class:       models.ClassHouseNumber,
				StreetID:    ref,
				HouseNumber: h.HouseNumber,
				Postcode:    h.Postcode,
				District:    districtOf[h.Postcode],
				Lat:         h.Lat,
				Lon:         h.Lon,
			})
			nextID++
			ds.houseNumbers++
		}
	}

	return ds, nil
}
