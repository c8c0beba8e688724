package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DecodeJSON decodes the request body into dst, rejecting unknown fields and
// trailing garbage.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("request body contains more than one JSON value")
	}
	return nil
}
