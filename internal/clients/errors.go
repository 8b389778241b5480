package clients

import (
	"errors"
	"fmt"
)

var (
	ErrCatalogFetch    = errors.New("catalog fetch failed")
	ErrOrderFetch      = errors.New("order fetch failed")
	ErrOrderSubmission = errors.New("order submission failed")
)

// Op names the remote operation an UpstreamError came from.
type Op string

const (
	OpListCoffees Op = "list coffees"
	OpListOrders  Op = "list orders"
	OpPlaceOrder  Op = "place order"
)

func (op Op) sentinel() error {
	switch op {
	case OpListCoffees:
		return ErrCatalogFetch
	case OpListOrders:
		return ErrOrderFetch
	case OpPlaceOrder:
		return ErrOrderSubmission
	default:
		return nil
	}
}

// UpstreamError is returned for transport failures (Err set) and non-2xx
// responses (StatusCode and Body set). It matches the sentinel for its Op.
type UpstreamError struct {
	Op         Op
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Op, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: %s: unexpected status %d: %s", e.Service, e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %s: unexpected status %d", e.Service, e.Op, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	s := e.Op.sentinel()
	return s != nil && target == s
}
