package restyutil

import (
	"errors"
	"net/url"
	"strings"
)

const redacted = "REDACTED"

// query params carrying credentials, proxy services authenticate this way
var sensitiveParams = []string{"api_key", "apikey", "token", "access_token"}

func isSensitiveParam(key string) bool {
	for _, name := range sensitiveParams {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// RedactURL returns a copy of u with the values of credential query params
// replaced, u itself is left untouched.
func RedactURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	out := *u
	if out.User != nil {
		out.User = url.User(out.User.Username())
	}
	if out.RawQuery == "" {
		return &out
	}

	query, err := url.ParseQuery(out.RawQuery)
	if err != nil {
		out.RawQuery = redacted
		return &out
	}
	changed := false
	for key, values := range query {
		if !isSensitiveParam(key) {
			continue
		}
		for i := range values {
			values[i] = redacted
		}
		changed = true
	}
	if changed {
		out.RawQuery = query.Encode()
	}
	return &out
}

// RedactURLString is RedactURL for urls that have not been parsed yet.
func RedactURLString(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return RedactURL(u).String()
}

// RedactError scrubs credentials from the url of a transport error in place
// and returns err.
func RedactError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = RedactURLString(urlErr.URL)
	}
	return err
}
