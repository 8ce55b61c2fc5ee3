package http

import (
	"net/http"

	"ledger/internal/validate"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// decodeBody reads a JSON object body and validates it against schema.
func decodeBody(w http.ResponseWriter, r *http.Request, schema validate.Schema) (validate.Values, error) {
	body, err := validate.DecodeObject(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return schema.Validate(body)
}

// decodeQuery validates the query string against schema.
func decodeQuery(r *http.Request, schema validate.Schema) (validate.Values, error) {
	return schema.ValidateQuery(r.URL.Query())
}
