package retry

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		// Transient indicators
		{errors.New("Connection timeout"), true},
		{errors.New("read tcp: ECONNRESET"), true},
		{errors.New("dial: econnrefused"), true},
		{errors.New("socket hang up"), true},
		{errors.New("Network Error while fetching"), true},
		{errors.New("provider rate limit exceeded"), true},
		{errors.New("429 Too Many Requests"), true},
		{errors.New("500 Internal Server Error"), true},
		{errors.New("502 Bad Gateway"), true},
		{errors.New("503 Service Unavailable"), true},
		{errors.New("504 Gateway Timeout"), true},
		{errors.New("model is overloaded"), true},
		{errors.New("service temporarily unavailable"), true},

		// Permanent indicators
		{errors.New("401 Unauthorized"), false},
		{errors.New("request was UNAUTHORIZED"), false},
		{errors.New("403 Forbidden"), false},
		{errors.New("404 Not Found"), false},
		{errors.New("endpoint not found"), false},
		{errors.New("Invalid API Key provided"), false},
		{errors.New("invalid_api_key"), false},

		// Permanent wins when both match
		{errors.New("timeout after 401 unauthorized"), false},
		{errors.New("rate limit hit: forbidden"), false},

		// Unknown defaults to retryable
		{errors.New("something inexplicable happened"), true},
		{nil, true},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.retryable {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.retryable)
		}
	}
}

func TestClassifyGRPCStatus(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
		reason    string
	}{
		{status.Error(codes.Unauthenticated, "bad token"), false, ReasonGRPCPermanent},
		{status.Error(codes.PermissionDenied, "nope"), false, ReasonGRPCPermanent},
		{status.Error(codes.NotFound, "no such agent"), false, ReasonGRPCPermanent},
		{status.Error(codes.InvalidArgument, "bad request"), false, ReasonGRPCPermanent},
		{status.Error(codes.Unavailable, "try later"), true, ReasonGRPCTransient},
		{status.Error(codes.ResourceExhausted, "quota"), true, ReasonGRPCTransient},
		{status.Error(codes.DeadlineExceeded, "too slow"), true, ReasonGRPCTransient},
		// Codes with no clear signal fall back to the message text.
		{status.Error(codes.Internal, "upstream forbidden"), false, ReasonPermanentIndicator},
		{status.Error(codes.Internal, "flaky"), true, ReasonUnclassified},
	}

	for _, tt := range tests {
		retryable, reason := Classify(tt.err)
		if retryable != tt.retryable || reason != tt.reason {
			t.Errorf("Classify(%v) = (%v, %s), want (%v, %s)",
				tt.err, retryable, reason, tt.retryable, tt.reason)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	for _, msg := range []string{"TIMEOUT", "Timeout", "tImEoUt"} {
		if !IsRetryable(errors.New(msg)) {
			t.Errorf("IsRetryable(%q) = false, want true", msg)
		}
	}
	for _, msg := range []string{"FORBIDDEN", "Forbidden"} {
		if IsRetryable(errors.New(msg)) {
			t.Errorf("IsRetryable(%q) = true, want false", msg)
		}
	}
}
