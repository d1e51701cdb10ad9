package ingest

import (
	"net/url"
)

// redact strips credentials from connection URIs before they are logged.
func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	return u.Redacted()
}
