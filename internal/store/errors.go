package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when an INSERT or UPDATE of a user
	// violates the unique index on users.email.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrUserNotFound is returned when a query expected to match a user
	// record produces an empty result set.
	ErrUserNotFound = errors.New("no user was found")

	// ErrPostNotFound is returned when a post lookup, update or delete
	// matches no row.
	ErrPostNotFound = errors.New("post was not found")

	// ErrSlugAlreadyExists is returned when the generated slug of a post
	// collides with an existing one. The caller retries with a suffix.
	ErrSlugAlreadyExists = errors.New("slug already exists")

	// ErrUnknownCategory is returned when a post references a category id
	// that does not exist (foreign key violation on post_categories).
	ErrUnknownCategory = errors.New("unknown category")

	// ErrSessionNotFound is returned when a session id is unknown to the
	// session store.
	ErrSessionNotFound = errors.New("session was not found")

	// ErrResetTokenNotFound is returned when no user holds the given, still
	// valid, password reset token.
	ErrResetTokenNotFound = errors.New("reset token was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)

// File storage errors.
var (
	// ErrSavingFile is returned when an uploaded file cannot be written.
	ErrSavingFile = errors.New("failed to save file")

	// ErrInvalidFileReference is returned when a stored reference does not
	// point into the upload directory.
	ErrInvalidFileReference = errors.New("invalid file reference")
)
