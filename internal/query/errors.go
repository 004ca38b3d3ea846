package query

import "fmt"

// QueryError reports a failure while evaluating a temperature statistics
// query. Its message is safe to return to API clients.
type QueryError struct {
	Op      string
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

// recoverQueryError converts a panic raised while evaluating op into a
// *QueryError stored in err.
func recoverQueryError(op string, err *error) {
	if r := recover(); r != nil {
		*err = &QueryError{Op: op, Message: fmt.Sprint(r)}
	}
}
