// Package cli implements authbridgectl, the terminal client of the account
// API.
//
// Every subcommand runs one account action: login, logout, register,
// whoami, profile, change-password and delete-account. Input is checked
// against the same form schemas the HTTP bridge uses, and API field errors
// are printed against the same form paths. The session is kept in a local
// SQLite file and renewed transparently before each authenticated command.
//
// Exit codes: 0 success, 1 failure, 2 rejected input, 3 not logged in or
// session expired, 4 bad configuration.
package cli
