package utils

import "fmt"

// GeometryError reports a degenerate or inverted element mapping
type GeometryError struct {
	ElementID int
	Det       float64
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("element %d: non-positive jacobian determinant %g", e.ElementID, e.Det)
}

// ConfigurationError reports an unsupported combination of parameters
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// MaterialError reports non-physical material parameters
type MaterialError struct {
	Material string
	Msg      string
}

func (e *MaterialError) Error() string {
	return fmt.Sprintf("material %s: %s", e.Material, e.Msg)
}

func NewMaterialError(material, format string, args ...interface{}) error {
	return &MaterialError{Material: material, Msg: fmt.Sprintf(format, args...)}
}
