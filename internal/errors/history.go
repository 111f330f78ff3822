package errors

import "errors"

// CorruptHistoryError is returned when the persisted snapshot sequence cannot be decoded.
type CorruptHistoryError struct {
	Key string
	Err error
}

func (e *CorruptHistoryError) Error() string {
	return "failed to decode stored history under key " + e.Key + ": " + e.Err.Error()
}

func (e *CorruptHistoryError) Unwrap() error {
	return e.Err
}

// NewCorruptHistoryError wraps a decode failure for the given storage key.
func NewCorruptHistoryError(key string, err error) *CorruptHistoryError {
	return &CorruptHistoryError{Key: key, Err: err}
}

// IsCorruptHistoryError reports whether err is a CorruptHistoryError (even when wrapped).
func IsCorruptHistoryError(err error) bool {
	var historyErr *CorruptHistoryError
	return errors.As(err, &historyErr)
}
