// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// maxRequestBody caps JSON request bodies at 1 MiB.
const maxRequestBody = 1 << 20

// decodeJSON decodes the request body into v with a size cap and strict
// field checking. Unknown fields are rejected so typos surface as 400s
// instead of silently ignored options.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// validationDetails flattens validator errors into stable
// "field - tag" strings for the problem response details.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, ve := range verrs {
			details = append(details, fmt.Sprintf("%s - %s", ve.Field(), ve.Tag()))
		}
		return details
	}
	return []string{err.Error()}
}
