package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Backend type names accepted by the factory and the configuration
const (
	BackendAuto          = "auto"
	BackendMalgo         = "malgo"
	BackendOto           = "oto"
	BackendSystemCommand = "system_command"
	BackendNull          = "null"
)

// BackendFactory creates Backend instances based on configuration
type BackendFactory interface {
	CreateBackend(backendType string) (Backend, error)
	GetSupportedBackends() []string
	IsValidBackendType(backendType string) bool
}

// DefaultBackendFactory implements BackendFactory with platform detection
type DefaultBackendFactory struct {
	isWSLFunc     func() bool
	commandExists func(string) bool
	cgo           bool
}

// Factory errors
var (
	ErrInvalidBackendType    = errors.New("invalid backend type")
	ErrBackendCreationFailed = errors.New("backend creation failed")
)

// NewBackendFactory creates a new DefaultBackendFactory with real platform detection
func NewBackendFactory() *DefaultBackendFactory {
	return &DefaultBackendFactory{
		isWSLFunc:     IsWSL,
		commandExists: CommandExists,
		cgo:           cgoEnabled,
	}
}

// NewBackendFactoryWithDependencies creates a factory with injected dependencies for testing
func NewBackendFactoryWithDependencies(isWSLFunc func() bool, commandExists func(string) bool) *DefaultBackendFactory {
	return &DefaultBackendFactory{
		isWSLFunc:     isWSLFunc,
		commandExists: commandExists,
		cgo:           cgoEnabled,
	}
}

// CreateBackend creates a Backend instance based on the specified type
func (f *DefaultBackendFactory) CreateBackend(backendType string) (Backend, error) {
	if backendType == "" {
		backendType = BackendAuto
	}

	slog.Debug("creating audio backend", "type", backendType)

	switch backendType {
	case BackendAuto:
		return f.createAutoBackend()
	case BackendSystemCommand:
		return f.createSystemCommandBackend()
	case BackendMalgo:
		return newMalgoBackend()
	case BackendOto:
		return newOtoBackend()
	case BackendNull:
		return NewNullBackend(), nil
	default:
		slog.Error("invalid backend type requested", "type", backendType)
		return nil, fmt.Errorf("%w: %s", ErrInvalidBackendType, backendType)
	}
}

// GetSupportedBackends returns a list of all supported backend types
func (f *DefaultBackendFactory) GetSupportedBackends() []string {
	return []string{BackendAuto, BackendMalgo, BackendOto, BackendSystemCommand, BackendNull}
}

// IsValidBackendType checks if a backend type is supported. The empty string
// means auto.
func (f *DefaultBackendFactory) IsValidBackendType(backendType string) bool {
	return backendType == "" || slices.Contains(f.GetSupportedBackends(), backendType)
}

// createAutoBackend selects the best backend for the current platform
func (f *DefaultBackendFactory) createAutoBackend() (Backend, error) {
	slog.Debug("auto-detecting optimal backend")

	optimalType := detectOptimalBackendWithChecker(f.isWSLFunc(), f.cgo, f.commandExists)
	slog.Debug("auto-detection result", "selected_type", optimalType)

	switch optimalType {
	case BackendSystemCommand:
		return f.createSystemCommandBackend()
	case BackendMalgo:
		return newMalgoBackend()
	default:
		slog.Error("auto-detection found no usable backend")
		return nil, fmt.Errorf("%w: no audio output found, use --backend null to run silently", ErrBackendCreationFailed)
	}
}

// createSystemCommandBackend creates a SystemCommandBackend with the best available command
func (f *DefaultBackendFactory) createSystemCommandBackend() (Backend, error) {
	preferredCommand := getPreferredSystemCommandWithChecker(f.commandExists)
	if preferredCommand == "" {
		slog.Error("no system audio commands available")
		return nil, fmt.Errorf("%w: no system audio commands found", ErrBackendNotAvailable)
	}

	slog.Debug("system command backend created", "command", preferredCommand)
	return NewSystemCommandBackend(preferredCommand), nil
}
