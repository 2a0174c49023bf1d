package services

// Service defines the lifecycle methods implemented by all agent services.
type Service interface {
	Start() error
	Stop() error
}
