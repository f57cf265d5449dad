package statsrepo

import (
	"sort"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// sortBadges orders by EarnedDate, then BadgeID.
func sortBadges(b []domain.UserBadge) {
	sort.SliceStable(b, func(i, j int) bool {
		if !b[i].EarnedDate.Equal(b[j].EarnedDate) {
			return b[i].EarnedDate.Before(b[j].EarnedDate)
		}
		return b[i].BadgeID < b[j].BadgeID
	})
}
