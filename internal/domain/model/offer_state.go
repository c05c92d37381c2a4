package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// OfferStateVersion is the current on-disk schema of the last-announced state.
const OfferStateVersion = 1

// OfferState is the set of free-now titles observed by the previous successful poll.
// It is only used for diffing and is overwritten every cycle.
type OfferState struct {
	Version   int       `json:"version"`
	Titles    []string  `json:"titles"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewOfferState(titles []string, now time.Time) *OfferState {
	cp := make([]string, len(titles))
	copy(cp, titles)
	return &OfferState{
		Version:   OfferStateVersion,
		Titles:    cp,
		UpdatedAt: now.UTC(),
	}
}

// DecodeOfferState accepts both the versioned object and the legacy plain array of titles.
func DecodeOfferState(b []byte) (*OfferState, error) {
	var legacy []string
	if err := json.Unmarshal(b, &legacy); err == nil {
		return &OfferState{Version: 0, Titles: legacy}, nil
	}
	var st OfferState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode offer state: %w", err)
	}
	if st.Version > OfferStateVersion {
		return nil, fmt.Errorf("offer state version %d is newer than supported %d", st.Version, OfferStateVersion)
	}
	return &st, nil
}

// EncodeOfferState always writes the current schema.
func EncodeOfferState(st *OfferState) ([]byte, error) {
	out := *st
	out.Version = OfferStateVersion
	if out.Titles == nil {
		out.Titles = []string{}
	}
	return json.Marshal(out)
}
