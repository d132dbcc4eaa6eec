package ratelimit

import "strings"

// matchEndpoint resolves the throttle for a request path and method. Exact
// path matches win over prefix matches; health checks are never limited.
func matchEndpoint(path, method string, limits []EndpointLimit) *EndpointLimit {
	if path == "/health" && method == "GET" {
		return &EndpointLimit{Limit: 0}
	}

	for i := range limits {
		limit := &limits[i]
		if limit.Method == method && limit.Path == path {
			return limit
		}
	}

	for i := range limits {
		limit := &limits[i]
		if limit.Method == method && strings.HasSuffix(limit.Path, "/") &&
			strings.HasPrefix(path, limit.Path) {
			return limit
		}
	}
	return nil
}
