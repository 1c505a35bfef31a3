package retry

import (
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Classification reasons reported alongside the retryable decision.
const (
	ReasonPermanentIndicator = "permanent_indicator"
	ReasonTransientIndicator = "transient_indicator"
	ReasonGRPCPermanent      = "grpc_permanent"
	ReasonGRPCTransient      = "grpc_transient"
	ReasonUnclassified       = "unclassified"
)

// permanentIndicators mark errors where retrying is futile (auth, missing
// resources, bad credentials). They take precedence over transient matches.
var permanentIndicators = []string{
	"401",
	"unauthorized",
	"403",
	"forbidden",
	"404",
	"not found",
	"invalid api key",
	"invalid_api_key",
}

// transientIndicators mark errors that are likely to clear on their own
// (network hiccups, rate limits, upstream overload).
var transientIndicators = []string{
	"timeout",
	"econnreset",
	"econnrefused",
	"socket hang up",
	"network error",
	"rate limit",
	"429",
	"500",
	"502",
	"503",
	"504",
	"overloaded",
	"temporarily unavailable",
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	retryable, _ := Classify(err)
	return retryable
}

// Classify determines whether err is retryable and why. gRPC status codes are
// checked first since they are unambiguous; everything else falls back to
// case-insensitive substring matching on the error text, with permanent
// indicators winning ties. Unknown errors default to retryable.
func Classify(err error) (bool, string) {
	if err == nil {
		return true, ReasonUnclassified // should not happen
	}

	if s, ok := status.FromError(err); ok && s.Code() != codes.OK {
		switch s.Code() {
		case codes.Unauthenticated, codes.PermissionDenied, codes.NotFound, codes.InvalidArgument:
			return false, ReasonGRPCPermanent
		case codes.Unavailable, codes.ResourceExhausted, codes.Aborted, codes.DeadlineExceeded:
			return true, ReasonGRPCTransient
		}
		// Other codes carry no clear signal; fall through to the message.
	}

	msg := strings.ToLower(err.Error())

	for _, indicator := range permanentIndicators {
		if strings.Contains(msg, indicator) {
			return false, ReasonPermanentIndicator
		}
	}

	for _, indicator := range transientIndicators {
		if strings.Contains(msg, indicator) {
			return true, ReasonTransientIndicator
		}
	}

	// Optimistic default: assume unknown failures are transient.
	return true, ReasonUnclassified
}
