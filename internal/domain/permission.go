package domain

import "fmt"

// PermissionState - состояние доступа к геолокации
type PermissionState int

const (
	PermissionUnknown PermissionState = iota
	PermissionRequested
	PermissionGranted
	PermissionDenied
)

func (s PermissionState) String() string {
	switch s {
	case PermissionUnknown:
		return "unknown"
	case PermissionRequested:
		return "requested"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	}
	return fmt.Sprintf("permission(%d)", int(s))
}

func (s PermissionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
