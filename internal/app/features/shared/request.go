// Package shared holds request helpers used by every JSON feature.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/auth"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/inputval"
)

// MaxBodyBytes caps request bodies read by DecodeJSON.
const MaxBodyBytes = 64 << 10

// DecodeJSON reads the request body into v. An empty body leaves v untouched;
// malformed JSON is invalid-argument.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Wrap(apperr.InvalidArgument, "Request body must be valid JSON.", err)
	}
	return nil
}

// Bind decodes the body into v and runs its validate tags. The first failing
// field becomes the invalid-argument message.
func Bind(r *http.Request, v any) error {
	if err := DecodeJSON(r, v); err != nil {
		return err
	}
	if res := inputval.Validate(v); res.HasErrors() {
		return apperr.New(apperr.InvalidArgument, res.First())
	}
	return nil
}

// CallerID returns the authenticated caller's uid.
func CallerID(r *http.Request) (string, error) {
	c, ok := auth.CurrentCaller(r.Context())
	if !ok {
		return "", apperr.New(apperr.Unauthenticated, "Sign in required.")
	}
	return c.ID, nil
}
