package domain

// DatabaseRecord is one row of the server's administrative catalog: a hosted
// database together with its most recent observed size.
type DatabaseRecord struct {
	Name          string
	CurrentSizeMB float64
}
