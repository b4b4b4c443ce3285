package models

import "time"

// Submission is a piece of source code submitted by a user for a problem.
// Judging happens outside of this server.
type Submission struct {
	ID         int64
	UserID     int64
	ProblemID  int64
	Language   string
	SourceCode string
	CreatedAt  time.Time

	// Set by listings that join users and problems.
	UserName    string
	ProblemSlug string
}
