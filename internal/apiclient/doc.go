// Package apiclient talks to the external REST API.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the API interface): token obtain/refresh, user
//     registration, password change, profile read/update, account deletion.
//  2. A net/http implementation (see Client) bound to at most one access
//     token, which it sends as a bearer credential.
//  3. A Factory that hands out clients for a given session, or anonymous
//     clients when there is none.
//
// # Error Handling
//
// Every non-2xx response is classified exactly once:
//
//   - a JSON object mapping each key to a list of strings becomes *FieldError;
//   - 401/403 becomes a *StatusError matching ErrUnauthorized;
//   - 5xx and transport failures match ErrUnavailable;
//   - anything else is an opaque *StatusError.
//
// No call is ever retried. Timeouts are those of the underlying http.Client.
package apiclient
