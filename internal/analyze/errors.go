package analyze

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrStoreUnavailable means the venue cache cannot be reached.
	ErrStoreUnavailable = eris.New("analyze: store unavailable")
	// ErrSearchUnavailable means no venue search backend is configured.
	ErrSearchUnavailable = eris.New("analyze: search unavailable")
	// ErrInvalidPlaceID is returned for a blank place id.
	ErrInvalidPlaceID = eris.New("analyze: place id is required")
	// ErrQueryTooShort is returned for search queries under MinQueryLength.
	ErrQueryTooShort = eris.New("analyze: search query too short")
)

// StoreError wraps a failed cache operation. It matches ErrStoreUnavailable.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("analyze: store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStoreUnavailable.
func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// AcquisitionError reports that reviews for a place could not be scraped.
type AcquisitionError struct {
	PlaceID string
	Err     error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("analyze: acquire reviews for %s: %v", e.PlaceID, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// UpstreamError reports a failed venue search call.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analyze: %s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
