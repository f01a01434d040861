package models

// APIServer is the inbound HTTP surface.
type APIServer interface {
	Start()
	Shutdown() error
}
