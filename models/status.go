package models

import (
	"database/sql/driver"
	"fmt"
)

// Status is an attendance status. The zero value is not a valid status.
type Status uint8

const (
	StatusPresent Status = iota + 1 // H, hadir
	StatusAbsent                    // A, alfa
	StatusExcused                   // I, izin
	StatusSick                      // S, sakit
)

// AllStatuses lists the statuses in report column order.
var AllStatuses = []Status{StatusPresent, StatusAbsent, StatusExcused, StatusSick}

// ParseStatus maps a single-letter code (H/A/I/S) to a Status.
func ParseStatus(code string) (Status, error) {
	switch code {
	case "H":
		return StatusPresent, nil
	case "A":
		return StatusAbsent, nil
	case "I":
		return StatusExcused, nil
	case "S":
		return StatusSick, nil
	}
	return 0, fmt.Errorf("unknown attendance status %q", code)
}

// Code returns the single-letter storage form.
func (s Status) Code() string {
	switch s {
	case StatusPresent:
		return "H"
	case StatusAbsent:
		return "A"
	case StatusExcused:
		return "I"
	case StatusSick:
		return "S"
	}
	return ""
}

// Label is the Indonesian report heading for the status.
func (s Status) Label() string {
	switch s {
	case StatusPresent:
		return "Hadir"
	case StatusAbsent:
		return "Alfa"
	case StatusExcused:
		return "Izin"
	case StatusSick:
		return "Sakit"
	}
	return "?"
}

func (s Status) Valid() bool {
	return s >= StatusPresent && s <= StatusSick
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
	return s.Code()
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid attendance status %d", uint8(s))
	}
	return []byte(s.Code()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid attendance status %d", uint8(s))
	}
	return s.Code(), nil
}

// Scan implements sql.Scanner.
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into Status", src)
}
