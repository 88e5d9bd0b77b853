// Package store is the persistence layer over the SQLite database. Every
// query is scoped by user_id; an update or delete that matches zero rows is
// reported as ErrNotFound rather than treated as a silent success, because
// a policy-blocked write looks exactly like that from here.
package store

import "errors"

var (
	// ErrNotFound is returned when a row does not exist for the user, and
	// when an update or delete affects zero rows.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateCode is returned when a client code collides for the user.
	ErrDuplicateCode = errors.New("client code already in use")
)
