package crpt

import "errors"

var (
	// ErrSerialization marks a document that could not be encoded to the wire
	// format or whose payload fails structural validation. The limiter slot is
	// already consumed when this surfaces.
	ErrSerialization = errors.New("crpt: document serialization failed")

	// ErrNetwork marks a transport-level failure. The request is not retried;
	// retry policy belongs to the caller.
	ErrNetwork = errors.New("crpt: network failure")
)

func IsSerializationError(err error) bool { return errors.Is(err, ErrSerialization) }

func IsNetworkError(err error) bool { return errors.Is(err, ErrNetwork) }
