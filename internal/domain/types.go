package domain

// StringList is an ordered list of strings persisted as a JSON column
// via GORM's json serializer (works on both Postgres and SQLite).
type StringList []string
