package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFatal(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"configuration", Config("EMAIL_FROM", "not set"), true},
		{"wrapped configuration", fmt.Errorf("build sender: %w", Config("SENDGRID_API_KEY", "not set")), true},
		{"global read", &StorageReadError{Err: cause}, true},
		{"per-user read", &StorageReadError{UserID: "u1", Err: cause}, false},
		{"dispatch", &DispatchError{To: "a@example.com", Err: cause}, false},
		{"write", &StorageWriteError{UserID: "u1", EventID: "e1", Err: cause}, false},
		{"plain", cause, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, "configuration: SCAN_SECRET: trigger secret not configured",
		Config("SCAN_SECRET", "trigger secret not configured").Error())
	assert.Equal(t, "storage read: list users: boom", (&StorageReadError{Err: cause}).Error())
	assert.Equal(t, "storage read: user u1: boom", (&StorageReadError{UserID: "u1", Err: cause}).Error())
	assert.Equal(t, "dispatch lab-1 to a@example.com: boom",
		(&DispatchError{EventID: "lab-1", To: "a@example.com", Err: cause}).Error())

	err := fmt.Errorf("scan: %w", &StorageWriteError{UserID: "u1", EventID: "asg-1", Err: cause})
	assert.ErrorIs(t, err, cause)
	var writeErr *StorageWriteError
	assert.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "asg-1", writeErr.EventID)
}
