package services

import "errors"

// Shared service errors, mapped onto HTTP statuses in the handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed      = errors.New("validation failed")
	ErrPacketUUIDRequired    = errors.New("packet uuid is required")
	ErrPacketGameRequired    = errors.New("packet game_id is required")
	ErrPacketEntityRequired  = errors.New("packet entity_id is required")
	ErrPacketPayloadRequired = errors.New("packet score_payload is required")
	ErrEntityNameRequired    = errors.New("entity name is required")
	ErrEntityTroopRequired   = errors.New("entity troop number is required")
	ErrEntityTypeInvalid     = errors.New("entity type must be patrol or troop")

	// Authentication for the admin surfaces
	ErrAdminInvalidPassphrase = errors.New("invalid admin passphrase")

	// Export
	ErrExportUnavailable = errors.New("bundle export is not configured (missing R2 settings)")
)
