// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a judge account as stored in the users table.
//
// PasswordHash and PasswordSalt are produced together by a single
// auth.GenerateCredentials call and are never updated independently.
type User struct {
	ID           int64
	UserName     string
	DisplayName  string
	PasswordHash string
	PasswordSalt string
	Permissions  []string
	CreatedAt    time.Time
}
