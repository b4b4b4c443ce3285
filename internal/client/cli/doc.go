// Package cli implements judgectl, the command-line client for the judge
// server.
//
// Commands:
//   - register: create an account
//   - login: authenticate and save the token pair
//   - refresh: trade the saved refresh token for a new access token
//   - whoami: show the logged-in user's profile
//   - logout: forget the saved tokens
//
// Tokens live in the data directory from config.Config.
package cli
