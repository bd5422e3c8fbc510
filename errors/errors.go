package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrMalformedPayload = fmt.Errorf("malformed notification payload")
	ErrUnknownOperation = fmt.Errorf("unknown mutation operation")
	ErrUnknownChannel   = fmt.Errorf("unknown notification channel")
	ErrUnknownEventKind = fmt.Errorf("unknown event kind")
	ErrMissingToken     = fmt.Errorf("missing authentication token")
	ErrInvalidToken     = fmt.Errorf("invalid or expired token")
)
