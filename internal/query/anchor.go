package query

import (
	"fmt"
	"time"

	"github.com/chrissnell/climateapi/internal/constants"
	"github.com/chrissnell/climateapi/internal/types"
)

// Anchor is the reference point for every "last 12 months" query. It is
// computed once when the engine is built.
type Anchor struct {
	MostRecentDate string `json:"most_recent_date"`
	OneYearAgo     string `json:"one_year_ago"`
}

// ComputeAnchor finds the latest observation date and the date 365 days
// before it. Both are empty when there are no observations.
func ComputeAnchor(observations []types.Observation) (Anchor, error) {
	var latest string
	for _, o := range observations {
		if o.Date > latest {
			latest = o.Date
		}
	}
	if latest == "" {
		return Anchor{}, nil
	}

	t, err := time.Parse(constants.DateLayout, latest)
	if err != nil {
		return Anchor{}, fmt.Errorf("most recent observation date %q is not YYYY-MM-DD: %w", latest, err)
	}

	return Anchor{
		MostRecentDate: latest,
		OneYearAgo:     t.AddDate(0, 0, -365).Format(constants.DateLayout),
	}, nil
}
