package client_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/client"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation keeps its text", err: apperror.ValidationFailed("stream_name", "Please enter a stream name"), want: "Please enter a stream name"},
		{name: "not found", err: apperror.NotFound("stream", "s1"), want: "Not found. It may have been deleted."},
		{name: "forbidden", err: apperror.Forbidden("owner only"), want: "You do not have permission to do that."},
		{name: "expired", err: apperror.Unauthorized("session expired"), want: "Your session has expired. Please log in again."},
		{name: "network", err: apperror.Network(errors.New("dial tcp")), want: "Could not reach the server. Please try again."},
		{name: "wrapped", err: fmt.Errorf("pins of board b1: %w", apperror.ErrRateLimited), want: "Too many requests. Please wait a moment and try again."},
		{name: "busy", err: client.ErrBusy, want: "Please wait for the current action to finish."},
		{name: "cancelled", err: context.Canceled, want: "The request was cancelled."},
		{name: "unknown", err: errors.New("boom"), want: "Something went wrong. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.Message(tt.err))
		})
	}
}
