package query

import (
	"fmt"

	"github.com/elipaulman/hack-ohio-2025/builder"
)

// LoadAndQuery loads a snapshot and creates the queryer (one-stop)
func LoadAndQuery(filename string, opts Options) (*NavigationQuery, error) {
	navData, err := builder.Load(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load navigation data: %w", err)
	}

	query, err := NewNavigationQuery(navData, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create navigation query: %w", err)
	}

	return query, nil
}
