package usecases

import (
	"fmt"

	"github.com/samirrijal/meetpoint/internal/core/domain"
)

// FoodQuery builds the venue search for places to eat. User preferences never
// go into the query; only the formatter sees them.
func FoodQuery(area domain.Area) string {
	return fmt.Sprintf(
		"best halal-friendly restaurants in %s with Google rating 4.3 or higher, "+
			"Indian, Chinese, American, burgers, vegan or vegetarian, with a prayer space nearby",
		areaPhrase(area),
	)
}

// ActivityQuery builds the venue search for things to do.
func ActivityQuery(area domain.Area) string {
	return fmt.Sprintf(
		"beginner-friendly, reasonably priced activities and things to do in %s with good reviews",
		areaPhrase(area),
	)
}

// areaPhrase names the area as precisely as the known fields allow.
func areaPhrase(area domain.Area) string {
	district := area.District != "" && area.District != domain.UnknownDistrict
	region := area.Region != "" && area.Region != domain.UnknownRegion

	switch {
	case district && region:
		return area.District + ", " + area.Region
	case district:
		return area.District
	case region:
		return fmt.Sprintf("%s (%s)", area.PostalCode, area.Region)
	default:
		return area.PostalCode
	}
}
