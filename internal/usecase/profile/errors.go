package profile

import (
	"errors"

	"kindred/internal/domain/assessment"
	"kindred/internal/pkg/lock"
)

var (
	// ErrValidation marks input or cached data that is structurally invalid.
	// Invalid cached profiles are discarded, never repaired.
	ErrValidation = errors.New("invalid profile data")
	// ErrStorage is returned when the durable tier rejects a write after
	// every retry.
	ErrStorage = errors.New("durable storage write failed")
	// ErrRemoteSync wraps remote failures in logs. It never reaches callers.
	ErrRemoteSync = errors.New("remote sync failed")
	// ErrProfileCorrupted means neither the durable primary nor its backup
	// could be read. All session keys have been cleared.
	ErrProfileCorrupted = errors.New("stored profile is corrupted")

	ErrLockContention   = lock.ErrLockContention
	ErrInvalidDimension = assessment.ErrUnknownDimension
)
