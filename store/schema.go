// Package store provides durable implementations of moneyhero.Store.
//
// Every state read back from disk is validated against the player state JSON
// schema before being decoded, so that a hand edited or truncated file is
// reported as corrupted instead of silently producing a broken player.
package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/etnz/moneyhero"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrCorrupted is wrapped by every error about unreadable stored data.
var ErrCorrupted = errors.New("corrupted player state")

//go:embed player_state.schema.json
var stateSchemaJSON string

var stateSchema = jsonschema.MustCompileString("player_state.schema.json", stateSchemaJSON)

// decodeState validates data against the player state schema and decodes it.
func decodeState(data []byte) (*moneyhero.PlayerState, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if err := stateSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	var s moneyhero.PlayerState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return &s, nil
}

// encodeState returns the persisted form of s.
func encodeState(s *moneyhero.PlayerState) ([]byte, error) {
	var buf bytes.Buffer
	if err := moneyhero.EncodeState(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
