package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"place-lookup/internal/models"
	"place-lookup/internal/repository"
)

// ErrInvalidPlaceID is returned for ids that cannot name a place.
var ErrInvalidPlaceID = errors.New("service: invalid place id")

// PlaceRepository interface for dependency injection
type PlaceRepository interface {
	FindPlace(ctx context.Context, id int64) (*models.Place, error)
	FindHouseNumber(ctx context.Context, streetID int64, houseNumber string) (*models.Place, error)
}

// PlaceService resolves places, optionally refined by a house number.
type PlaceService struct {
	repo PlaceRepository
}

// NewPlaceService creates a new place service
func NewPlaceService(repo PlaceRepository) *PlaceService {
	return &PlaceService{repo: repo}
}

// GetPlace returns the place id or, given a house number, the matching house
// number of the street id. A nil place without error means no match.
func (s *PlaceService) GetPlace(ctx context.Context, id string, houseNumber string) (*models.Place, error) {
	placeID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || placeID <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlaceID, id)
	}

	var place *models.Place
	if houseNumber = strings.TrimSpace(houseNumber); houseNumber == "" {
		place, err = s.repo.FindPlace(ctx, placeID)
	} else {
		place, err = s.repo.FindHouseNumber(ctx, placeID, houseNumber)
	}
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service: failed to find place: %w", err)
	}

	return withOSM(place), nil
}
