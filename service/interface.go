// Package service runs long-lived subsystems (peer link, audio device) through a shared lifecycle
package service

// Service is a subsystem owned by the Hub
// The hub calls Init once with the args given at registration, Start after every
// service initialized, and Stop in reverse start order on shutdown or rollback
type Service interface {
	// Name is unique within a hub and is what Dependencies refer to
	Name() string

	// Dependencies lists services that must be initialized and started first
	Dependencies() []string

	Init(args ...any) error

	// Start may launch goroutines; it must not block
	Start() error

	// Stop must be idempotent
	Stop() error
}
