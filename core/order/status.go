package order

// Status is the order fulfillment state. The values are the historical
// Indonesian ones and are part of the API contract.
type Status string

const (
	Pending    Status = "pending"
	Processing Status = "diproses"
	Shipped    Status = "dikirim"
	Completed  Status = "selesai"
	Cancelled  Status = "dibatalkan"
)

func (s Status) Valid() bool {
	switch s {
	case Pending, Processing, Shipped, Completed, Cancelled:
		return true
	}
	return false
}

// CanTransition reports whether next follows s in the conventional
// fulfillment sequence. The transition handler accepts any valid
// status regardless; this is available to stricter callers.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case Pending:
		return next == Processing || next == Cancelled
	case Processing:
		return next == Shipped || next == Cancelled
	case Shipped:
		return next == Completed
	}
	return false
}
