// Package clientip extracts the originating client address from an
// *http.Request behind one or more reverse proxies.
//
// [GetIP] walks CF-Connecting-IP, X-Forwarded-For, and X-Real-IP before
// falling back to RemoteAddr, discarding values that are not valid IP
// addresses. [Middleware] resolves the address once and stores it in the
// request context for downstream handlers. The rate limiting layer uses
// GetIP as its anonymous-client admission key.
package clientip
