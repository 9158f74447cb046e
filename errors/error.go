package errors

// ErrSockVCR is an error that indicates a misuse of the VCR.
type ErrSockVCR struct {
	message string
}

// NewErrSockVCR creates a new initialised ErrSockVCR.
func NewErrSockVCR(message string) *ErrSockVCR {
	return &ErrSockVCR{
		message: message,
	}
}

func (e ErrSockVCR) Error() string {
	return e.message
}
