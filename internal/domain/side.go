package domain

import (
	"encoding/json"
	"fmt"
)

// Side is the direction of an executed order.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

// side string constants to avoid magic strings
const (
	sideStringBuy  = "buy"
	sideStringSell = "sell"
)

// String returns the string representation of the side
func (s Side) String() string {
	switch s {
	case SideBuy:
		return sideStringBuy
	case SideSell:
		return sideStringSell
	default:
		return "unknown"
	}
}

// ParseSide converts a string into a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case sideStringBuy:
		return SideBuy, nil
	case sideStringSell:
		return SideSell, nil
	}
	return 0, fmt.Errorf("unknown side: %q", s)
}

// MarshalJSON implements json.Marshaler.
func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	side, err := ParseSide(str)
	if err != nil {
		return err
	}
	*s = side
	return nil
}
