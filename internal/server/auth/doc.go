// Package auth is the authentication and authorization core of the judge
// server: password credential hashing, signed access/refresh tokens, session
// resolution and permission checks.
//
// Nothing in this package knows about HTTP or gRPC. Transport layers call
// SessionResolver.Resolve and map the returned sentinel errors from package
// common to their own status codes.
package auth
