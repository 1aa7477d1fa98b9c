package txdecode

import "fmt"

// UnknownTypeError is returned when the type discriminator of a record is not
// a transaction type the decoder supports.
type UnknownTypeError struct {
	Type string
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown transaction type %s", e.Type)
}

// MissingFieldError is returned when a non-signature field required by the
// declared transaction type is absent from the record.
type MissingFieldError struct {
	Field string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q in transaction", e.Field)
}

// MalformedFieldError is returned when a field is present but has the wrong
// shape or encoding for the declared transaction type.
type MalformedFieldError struct {
	Field string
	Err   error
}

func (e MalformedFieldError) Error() string {
	return fmt.Sprintf("malformed field %q in transaction: %s", e.Field, e.Err.Error())
}

func (e MalformedFieldError) Unwrap() error {
	return e.Err
}
