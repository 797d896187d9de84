package modules

import (
	"emperror.dev/errors"
)

const (
	// ErrModuleExists is returned when adding (or renaming to) a name that is
	// already taken.
	ErrModuleExists = errors.Sentinel("module already exists")

	// ErrModuleNotFound is returned when updating or deleting a module that
	// isn't registered.
	ErrModuleNotFound = errors.Sentinel("module not found")

	// ErrMalformedRecord is returned when persisted module data can't be
	// turned back into a ModuleData.
	ErrMalformedRecord = errors.Sentinel("malformed module record")
)

func malformed(detail string) error {
	return errors.WithMessage(ErrMalformedRecord, detail)
}

func moduleExists(name string) error {
	return errors.WithDetails(errors.WithMessagef(ErrModuleExists, "module %s", name), "module", name)
}

func moduleNotFound(name string) error {
	return errors.WithDetails(errors.WithMessagef(ErrModuleNotFound, "module %s", name), "module", name)
}

// IsNotFound reports whether err was caused by a missing module.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrModuleNotFound)
}

// IsExists reports whether err was caused by a name conflict.
func IsExists(err error) bool {
	return errors.Is(err, ErrModuleExists)
}
