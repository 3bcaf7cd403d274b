package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"place-lookup/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPlaceNotFound is returned when no place matches a lookup.
var ErrPlaceNotFound = errors.New("repository: place not found")

// Schema creates the places table. Streets, locations and house numbers share
// the table; locations and house numbers link up to their street.
const Schema = `
	CREATE TABLE IF NOT EXISTS places (
		id BIGSERIAL PRIMARY KEY,
		class VARCHAR(32) NOT NULL,
		type VARCHAR(64) NOT NULL DEFAULT '',
		name VARCHAR(255) NOT NULL DEFAULT '',
		simple_name VARCHAR(255) NOT NULL DEFAULT '',
		street_id BIGINT REFERENCES places (id),
		house_number VARCHAR(32) NOT NULL DEFAULT '',
		postcode VARCHAR(16) NOT NULL DEFAULT '',
		district VARCHAR(255) NOT NULL DEFAULT '',
		neighbourhood VARCHAR(255) NOT NULL DEFAULT '',
		boundary VARCHAR(255) NOT NULL DEFAULT '',
		city VARCHAR(255) NOT NULL DEFAULT '',
		length INTEGER NOT NULL DEFAULT 0,
		lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		lon DOUBLE PRECISION NOT NULL DEFAULT 0,
		relevance BIGINT NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS places_simple_name_idx ON places (simple_name text_pattern_ops);
	CREATE INDEX IF NOT EXISTS places_street_house_number_idx ON places (street_id, house_number);
`

const selectPlace = `
	SELECT
		p.id,
		p.class,
		p.type,
		p.name,
		COALESCE(s.name, ''),
		COALESCE(p.street_id, 0),
		p.house_number,
		p.postcode,
		p.district,
		p.neighbourhood,
		p.boundary,
		p.city,
		p.length,
		p.lat,
		p.lon,
		p.relevance
	FROM places p
	LEFT JOIN places s ON s.id = p.street_id
`

// Repository implements place storage on PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SearchCandidates returns streets and locations whose simplified name starts
// with prefix, shortest names first.
func (r *Repository) SearchCandidates(ctx context.Context, prefix string, limit int) ([]models.Place, error) {
	sql := selectPlace + `
		WHERE p.class <> 'houseNumber'
		  AND p.simple_name LIKE $1 || '%'
		ORDER BY length(p.simple_name), p.simple_name, p.id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, sql, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute candidate query: %w", err)
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan place: %w", err)
		}
		places = append(places, place)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return places, nil
}

// FindPlace returns the place with the given id.
func (r *Repository) FindPlace(ctx context.Context, id int64) (*models.Place, error) {
	row := r.db.QueryRow(ctx, selectPlace+`WHERE p.id = $1`, id)
	return scanOne(row)
}

// FindHouseNumber returns the house number of the street streetID.
func (r *Repository) FindHouseNumber(ctx context.Context, streetID int64, houseNumber string) (*models.Place, error) {
	sql := selectPlace + `
		WHERE p.street_id = $1
		  AND p.class = 'houseNumber'
		  AND lower(p.house_number) = lower($2)
		ORDER BY p.id
		LIMIT 1
	`
	row := r.db.QueryRow(ctx, sql, streetID, houseNumber)
	return scanOne(row)
}

// IncrementRelevance bumps the relevance of the given places by one.
func (r *Repository) IncrementRelevance(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE places SET relevance = relevance + 1 WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("repository: failed to update relevance: %w", err)
	}
	return nil
}

// CountByClass returns the number of places per class.
func (r *Repository) CountByClass(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT class, COUNT(*) FROM places GROUP BY class`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to count places: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			class string
			count int64
		)
		if err := rows.Scan(&class, &count); err != nil {
			return nil, fmt.Errorf("repository: failed to scan count: %w", err)
		}
		counts[class] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}
	return counts, nil
}

func scanOne(row pgx.Row) (*models.Place, error) {
	place, err := scanPlace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlaceNotFound
		}
		return nil, fmt.Errorf("repository: failed to execute place query: %w", err)
	}
	return &place, nil
}

func scanPlace(row pgx.Row) (models.Place, error) {
	var (
		place    models.Place
		id       int64
		streetID int64
		length   int32
		rel      int64
	)
	err := row.Scan(
		&id,
		&place.Class,
		&place.Type,
		&place.Name,
		&place.Street,
		&streetID,
		&place.HouseNumber,
		&place.Postcode,
		&place.District,
		&place.Neighbourhood,
		&place.Boundary,
		&place.City,
		&length,
		&place.Lat,
		&place.Lon,
		&rel,
	)
	if err != nil {
		return models.Place{}, err
	}

	place.ID = strconv.FormatInt(id, 10)
	if streetID != 0 {
		place.StreetID = strconv.FormatInt(streetID, 10)
	}
	place.Length = int(length)
	if rel > 0 {
		place.Relevance = uint64(rel)
	}
	return place, nil
}
