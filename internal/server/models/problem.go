package models

// Problem is a judge problem. TimeLimit is in seconds, MemoryLimit in bytes.
type Problem struct {
	ID          int64
	Slug        string
	Title       string
	TimeLimit   float64
	MemoryLimit int64
}
