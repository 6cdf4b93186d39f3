package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// A full deck of answer submissions stays well under this.
const maxBodyBytes = 256 << 10

var errTrailingJSON = errors.New("unexpected data after json body")

// decodeJSON reads exactly one JSON value into dst and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errTrailingJSON
	}
	return nil
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
		return
	}
	WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
}
