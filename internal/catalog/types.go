package catalog

// Item represents a single catalog position submitted for validation.
// Price is in minor currency units. Items are never mutated after decoding.
type Item struct {
	Name        string `json:"name"`
	Vendor      string `json:"vendor"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Barcode     int64  `json:"barcode"`
	Article     int64  `json:"article"`
	Discount    int64  `json:"discount"`
}

// Severity classifies a validation finding
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding represents a single validation outcome for one field of one item.
// Findings are fire-and-forget events, they carry no identity of their own.
type Finding struct {
	Field    string
	Severity Severity
	Message  string
}

// Subscriber receives validation findings and the completion signal for one
// session. OnCompleted is invoked exactly once, after every finding of the
// run has been delivered. Implementations must tolerate concurrent calls to
// OnError and OnWarning.
type Subscriber interface {
	OnError(field, message string)
	OnWarning(field, message string)
	OnCompleted()
}
