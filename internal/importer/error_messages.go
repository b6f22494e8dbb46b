package importer

// # Error Codes Reference
//
// Import failures are mapped to short messages with a code that operators
// can quote when reporting a problem.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - No path: No file path supplied
//	IMP002 - File not found: The file does not exist
//	IMP003 - Not a file: The path is a directory or device
//	IMP004 - Not readable: The file cannot be opened
//	IMP005 - Invalid price: A stock row carries a malformed price
//	IMP006 - Empty file: The file has no header row
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key          (SQLSTATE 23505, "duplicate key")
//	DB003 - Foreign key            (SQLSTATE 23503, "violates foreign key")
//	DB004 - Connection refused     ("connection refused")
//	DB005 - Connection reset       ("connection reset")
//	DB006 - Timeout                ("timeout")
//	DB007 - Deadlock               (SQLSTATE 40P01, "deadlock")
//	DB008 - Value too long         (SQLSTATE 22001, "value too long")
//	DB009 - Constraint violation   (SQLSTATE 23514, "constraint violation")
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL002 - Invalid number        (SQLSTATE 22P02, "is not an integer", "is negative")
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Cancelled             ("context canceled")
//	RUN002 - Deadline exceeded     ("context deadline exceeded")
//
// ERR000 is returned when nothing matches; the logged error has the detail.
//
// Typed errors are checked first (ImportError kinds, PostgreSQL SQLSTATE
// codes), then the error text is matched case-insensitively against the
// pattern table. The first match wins.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides operator-facing error information with guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var kindMessages = map[Kind]UserMessage{
	KindNoPath: {
		Message: "No file path supplied",
		Action:  "Pass the path of the CSV file to import",
		Code:    "IMP001",
	},
	KindFileNotFound: {
		Message: "The file does not exist",
		Action:  "Check the path and try again",
		Code:    "IMP002",
	},
	KindNotAFile: {
		Message: "The path is not a regular file",
		Action:  "Pass a CSV file, not a directory",
		Code:    "IMP003",
	},
	KindNotReadable: {
		Message: "The file cannot be read",
		Action:  "Check the file permissions",
		Code:    "IMP004",
	},
	KindInvalidPrice: {
		Message: "A stock row has an invalid price",
		Action:  "Use plain decimal prices without currency symbols",
		Code:    "IMP005",
	},
	KindEmptyFile: {
		Message: "The file is empty",
		Action:  "Export the catalogue again with a header row",
		Code:    "IMP006",
	},
}

var sqlStateMessages = map[string]UserMessage{
	"23505": {
		Message: "A record with this key already exists",
		Action:  "Check for conflicting UPCs or SKUs",
		Code:    "DB001",
	},
	"23503": {
		Message: "Referenced record does not exist",
		Action:  "Check that the catalogue schema is complete",
		Code:    "DB003",
	},
	"40P01": {
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	},
	"22001": {
		Message: "A value is too long for its column",
		Action:  "Shorten the UPC, SKU or name and try again",
		Code:    "DB008",
	},
	"23514": {
		Message: "A value was rejected by a database check",
		Action:  "Check stock quantities are zero or more",
		Code:    "DB009",
	},
	"22P02": {
		Message: "Invalid number format detected",
		Action:  "Use whole numbers for stock quantities",
		Code:    "VAL002",
	},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is matched against the lower-cased error text. Specific
// patterns come before general ones.
var errorPatterns = []errorPattern{
	{"duplicate key", sqlStateMessages["23505"]},
	{"violates foreign key", sqlStateMessages["23503"]},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Check DATABASE_URL and that the server is running",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Import timed out",
		Action:  "Try again with a longer timeout",
		Code:    "RUN002",
	}},
	{"context canceled", UserMessage{
		Message: "Import was cancelled",
		Action:  "Nothing was saved; run the import again when ready",
		Code:    "RUN001",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Please try again later",
		Code:    "DB006",
	}},
	{"deadlock", sqlStateMessages["40P01"]},
	{"value too long", sqlStateMessages["22001"]},
	{"longer than", sqlStateMessages["22001"]},
	{"is not an integer", sqlStateMessages["22P02"]},
	{"is negative", sqlStateMessages["23514"]},
	{"constraint violation", sqlStateMessages["23514"]},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log output for details",
	Code:    "ERR000",
}

// MapError converts an import error to an operator-facing message.
// It returns the zero UserMessage for a nil error and ERR000 when nothing
// matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ie *ImportError
	if errors.As(err, &ie) {
		if msg, ok := kindMessages[ie.Kind]; ok {
			return msg
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := sqlStateMessages[pgErr.Code]; ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
