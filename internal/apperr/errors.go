// Package apperr defines the error taxonomy shared by the scan job, its
// collaborators, and the HTTP layer. Errors are recovered at the narrowest
// scope possible (event > user > run); only ConfigurationError and a global
// StorageReadError abort a run.
package apperr

import (
	"errors"
	"fmt"
)

// ConfigurationError reports missing or invalid settings such as email
// provider credentials or the trigger secret. Fatal to the invocation.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Setting, e.Reason)
}

// Config is a shorthand constructor for ConfigurationError.
func Config(setting, reason string) error {
	return &ConfigurationError{Setting: setting, Reason: reason}
}

// StorageReadError reports a failed read. An empty UserID means the user
// listing itself failed and the run cannot continue.
type StorageReadError struct {
	UserID string
	Err    error
}

func (e *StorageReadError) Error() string {
	if e.UserID == "" {
		return fmt.Sprintf("storage read: list users: %v", e.Err)
	}
	return fmt.Sprintf("storage read: user %s: %v", e.UserID, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// Global reports whether the failure affects the whole run.
func (e *StorageReadError) Global() bool { return e.UserID == "" }

// DispatchError reports a failed email send for one event.
type DispatchError struct {
	EventID string
	To      string
	Err     error
}

func (e *DispatchError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("dispatch to %s: %v", e.To, e.Err)
	}
	return fmt.Sprintf("dispatch %s to %s: %v", e.EventID, e.To, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// StorageWriteError reports a ledger or assignment update that failed after
// the email was already sent. The next scan may send a duplicate.
type StorageWriteError struct {
	UserID  string
	EventID string
	Err     error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage write: user %s event %s: %v", e.UserID, e.EventID, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// IsFatal reports whether err should fail the whole run.
func IsFatal(err error) bool {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return true
	}
	var readErr *StorageReadError
	return errors.As(err, &readErr) && readErr.Global()
}
