package core

import "errors"

var (
	// ErrVendorNotSpecified is returned by the factory when no vendor key
	// was given and no default vendor is configured
	ErrVendorNotSpecified = errors.New("siem vendor not specified: set vendor in config, SIEM_VENDOR, or pass a vendor explicitly")
	// ErrUnknownVendor is returned by the factory for a vendor key outside
	// the registry; callers see it wrapped with the offending key
	ErrUnknownVendor = errors.New("unknown siem vendor")
	// ErrUnauthorized is returned by a guarded sink with no credential
	// configured. The call fails before any rate accounting happens.
	ErrUnauthorized = errors.New("unauthorized: siem credential not configured")
)
