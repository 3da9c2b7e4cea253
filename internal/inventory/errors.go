package inventory

import "errors"

// Failure kinds. Callers match them with errors.Is; detail is added by
// wrapping with fmt.Errorf("%w: ...").
var (
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrLocationNotFound  = errors.New("location not found")
	ErrAlreadyExists     = errors.New("inventory already exists for product and location")

	ErrInvalidQuantity               = errors.New("invalid quantity")
	ErrInsufficientStock             = errors.New("insufficient stock")
	ErrInsufficientAvailableStock    = errors.New("insufficient available stock")
	ErrInvalidReservationQuantity    = errors.New("reservation quantity must be positive")
	ErrCannotReleaseMoreThanReserved = errors.New("cannot release more than reserved")

	ErrSameLocation    = errors.New("cannot transfer to the same inventory")
	ErrProductMismatch = errors.New("inventories hold different products")

	ErrConcurrencyConflict = errors.New("inventory was modified concurrently")
	ErrCorruptRecord       = errors.New("stored inventory violates invariants")

	// ErrTransferCompensated reports a transfer whose debit was persisted and
	// then reversed because the credit leg failed.
	ErrTransferCompensated = errors.New("transfer failed and debit was compensated")

	// ErrTransferPartialFailure reports a transfer left half applied: the debit
	// is persisted and neither the credit nor the compensation succeeded.
	ErrTransferPartialFailure = errors.New("transfer partially applied")
)

// Transfer outcomes come first: they wrap the cause of the failed leg.
var codes = []struct {
	err  error
	code string
}{
	{ErrTransferPartialFailure, "TRANSFER_PARTIAL_FAILURE"},
	{ErrTransferCompensated, "TRANSFER_COMPENSATED"},
	{ErrInventoryNotFound, "INVENTORY_NOT_FOUND"},
	{ErrProductNotFound, "PRODUCT_NOT_FOUND"},
	{ErrLocationNotFound, "LOCATION_NOT_FOUND"},
	{ErrAlreadyExists, "ALREADY_EXISTS"},
	{ErrInvalidQuantity, "INVALID_QUANTITY"},
	{ErrInsufficientStock, "INSUFFICIENT_STOCK"},
	{ErrInsufficientAvailableStock, "INSUFFICIENT_AVAILABLE_STOCK"},
	{ErrInvalidReservationQuantity, "INVALID_RESERVATION_QUANTITY"},
	{ErrCannotReleaseMoreThanReserved, "CANNOT_RELEASE_MORE_THAN_RESERVED"},
	{ErrSameLocation, "SAME_LOCATION"},
	{ErrProductMismatch, "PRODUCT_MISMATCH"},
	{ErrConcurrencyConflict, "CONCURRENCY_CONFLICT"},
	{ErrCorruptRecord, "CORRUPT_RECORD"},
}

// Code returns the stable error code for err, or "INTERNAL" when err is not
// one of the package's failure kinds.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}

// IsBusiness reports whether err is an expected business-rule failure rather
// than an infrastructure error.
func IsBusiness(err error) bool {
	return Code(err) != "INTERNAL"
}
