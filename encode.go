package moneyhero

import (
	"encoding/json"
	"fmt"
	"io"
)

// EncodeState writes s as indented JSON.
func EncodeState(w io.Writer, s *PlayerState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("could not encode state: %w", err)
	}
	return nil
}

// DecodeState reads a state written by EncodeState.
func DecodeState(r io.Reader) (*PlayerState, error) {
	var s PlayerState
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("could not decode state: %w", err)
	}
	return &s, nil
}
