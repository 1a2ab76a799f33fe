package utils

// Error is a const-friendly error type; sentinel errors across the codebase
// are declared as typed string constants and matched with errors.Is().
type Error string

func (e Error) Error() string {
	return string(e)
}

// PanicOnError panics if err is not nil; used during application bootstrap
// where continuing without the resource is meaningless.
func PanicOnError(err error) {
	if err != nil {
		panic(err)
	}
}
