package moneyhero

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
)

// Query evaluates a JSONPath expression against the JSON form of s, for
// instance "$.transactionHistory[?(@.battleResult=='critical')].name".
func Query(s *PlayerState, path string) (any, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("could not encode state: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("could not decode state: %w", err)
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", path, err)
	}
	return v, nil
}
