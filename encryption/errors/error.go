package cryptoerr

// ErrCrypto is an error that indicates a cryptographic failure.
type ErrCrypto struct {
	message string
}

// NewErrCrypto creates a new initialised ErrCrypto.
func NewErrCrypto(message string) *ErrCrypto {
	return &ErrCrypto{
		message: message,
	}
}

func (e ErrCrypto) Error() string {
	return "crypto: " + e.message
}

// ErrEnvelope indicates data that is not a well-formed encrypted envelope.
type ErrEnvelope struct {
	part string
}

// NewErrEnvelope creates a new ErrEnvelope about the named envelope part.
func NewErrEnvelope(part string) *ErrEnvelope {
	return &ErrEnvelope{
		part: part,
	}
}

// Part returns the envelope part that could not be read.
func (e ErrEnvelope) Part() string {
	return e.part
}

func (e ErrEnvelope) Error() string {
	return "crypto: malformed envelope: " + e.part
}
