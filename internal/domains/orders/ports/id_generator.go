package ports

// IDGenerator produces a new unique order identifier per call.
type IDGenerator interface {
	Next() string
}
