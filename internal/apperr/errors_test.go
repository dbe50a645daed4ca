package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	capacity := Validation(CodeCapacityExceeded, "sub-event %s is full", "se1")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"kind matches", capacity, ErrValidation, true},
		{"code matches", capacity, ErrCapacityExceeded, true},
		{"other code", capacity, ErrDuplicateEnrollment, false},
		{"other kind", capacity, ErrNotFound, false},
		{"wrapped", fmt.Errorf("enroll: %w", NotFound("player", "p1")), ErrNotFound, true},
		{"plain error", errors.New("boom"), ErrValidation, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("slot", "s1")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation(CodeSlotOccupied, "occupied")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(fmt.Errorf("wrap: %w", Forbidden("nope"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("db down")))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := &Error{Kind: KindValidation, Message: "bad input", Cause: errors.New("parse failure")}
	assert.Equal(t, "bad input: parse failure", err.Error())
	assert.ErrorIs(t, err, err.Cause)
}
