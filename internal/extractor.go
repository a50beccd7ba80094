package internal

import (
	"fmt"
	"strings"
)

// ExtractorSource reads one value from the request.
// It returns ("", false) when the value is absent.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Request().HTTP().Header.Get(name)
		return v, v != ""
	}
}

// FromParam reads a route parameter, falling back to the form value.
func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Request().Param(name)
		return v, v != ""
	}
}

// FromCookie reads a plain cookie.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		ck, err := c.Request().HTTP().Cookie(name)
		if err != nil || ck.Value == "" {
			return "", false
		}
		return ck.Value, true
	}
}

// FromSession reads a session value. Non-string values are formatted with
// fmt.Sprint.
func FromSession(key string) ExtractorSource {
	return func(c Context) (string, bool) {
		s := c.Session()
		if s == nil {
			return "", false
		}
		val, ok := s.Get(key)
		if !ok || val == nil {
			return "", false
		}
		str, ok := val.(string)
		if !ok {
			str = fmt.Sprint(val)
		}
		return str, str != ""
	}
}

// FromUser reads the ID of the logged-in user.
func FromUser() ExtractorSource {
	return func(c Context) (string, bool) {
		u := c.User()
		if u == nil || !u.IsLogin() {
			return "", false
		}
		return u.ID(), u.ID() != ""
	}
}

// FromBearerToken reads a Bearer token from the Authorization header.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		auth := c.Request().HTTP().Header.Get("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		token := auth[7:]
		return token, token != ""
	}
}
