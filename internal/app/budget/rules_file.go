package budget

import (
	"fmt"

	"github.com/Overland-East-Bay/trip-budget-api/internal/platform/config"
)

// LoadRules reads overrides from a TOML file on top of DefaultRules.
// An empty path yields the defaults.
func LoadRules(path string) (Rules, error) {
	r := DefaultRules()
	if path == "" {
		return r, nil
	}
	if err := config.LoadTOML(path, &r); err != nil {
		return Rules{}, fmt.Errorf("load budget rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}
