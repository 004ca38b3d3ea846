package restserver

import (
	"errors"
	"net/http"

	"github.com/chrissnell/climateapi/internal/query"
)

// errorStatus maps each kind of engine error to the HTTP status returned to
// the client. Query errors are reported with 200 and an {"error": ...} body
// for compatibility with existing clients.
var errorStatus = []struct {
	kind   string
	match  func(error) bool
	status int
}{
	{"query", isQueryError, http.StatusOK},
}

func isQueryError(err error) bool {
	var qe *query.QueryError
	return errors.As(err, &qe)
}

// classifyError returns the kind and status for err. Errors not listed in
// errorStatus are internal errors.
func classifyError(err error) (string, int) {
	for _, e := range errorStatus {
		if e.match(err) {
			return e.kind, e.status
		}
	}
	return "internal", http.StatusInternalServerError
}
