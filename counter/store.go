package counter

// ListOpts filters and pages counter listings.
type ListOpts struct {
	KeyPrefix string
	Limit     int
	Offset    int
}
