package client

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

var offlineMarkers = []string{"offline", "network", "internet connection"}

// IsOffline reports whether err means the remote store could not be reached.
func IsOffline(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.FailedPrecondition:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, m := range offlineMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
