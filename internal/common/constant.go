// Package common contains shared constants and sentinel errors used across
// authbridge components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the access token
// on outbound REST requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the access token in the Authorization header.
const BearerScheme = "Bearer"

// RequestIDHeaderName is echoed back on every inbound response.
const RequestIDHeaderName = "X-Request-ID"
