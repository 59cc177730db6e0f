package gateway

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360/travelstreams/errors"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil is ok", nil, StatusOK},
		{
			"invalid class",
			errors.WrapInvalid(errors.ErrInvalidCriteria, "engine", "Query", "validate"),
			"invalid",
		},
		{
			"aborted class",
			errors.WrapAborted(errors.ErrStreamAborted, "engine", "Checkout", "receive"),
			"aborted",
		},
		{
			"unavailable class",
			errors.WrapUnavailable(errors.ErrCatalogUnavailable, "engine", "Query", "load catalog"),
			"unavailable",
		},
		{
			"unclassified errors surface as unavailable",
			stderrors.New("something broke"),
			"unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFromError(tt.err))
		})
	}
}
