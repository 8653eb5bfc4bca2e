package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
// When users encounter errors they can quote the code for faster diagnosis.
// Codes are grouped by category:
//
// # Load Errors (LOAD001-LOAD099)
//
//	LOAD001 - No source could be read: every candidate and the fallback failed
//	          Action: Check the configured collection sources or upload an export
//	          Patterns: "load failed"
//
//	LOAD002 - No records found: the export parsed to zero rows
//	          Action: Make sure the export has a header row and data rows
//	          Patterns: "no records found"
//
//	LOAD003 - No sources configured
//	          Action: Set COLLECTION_SOURCES or enable the demo fallback
//	          Patterns: "no collection sources"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE002 - Not found               Patterns: "no such file"
//	FILE003 - Permission denied       Patterns: "permission denied"
//	FILE004 - No file                 Patterns: "no file provided"
//	FILE005 - Empty file              Patterns: "empty file"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Wrong file type          Patterns: "not a csv"
//	UPL002 - System busy              Patterns: "too many concurrent uploads"
//	UPL003 - Export not saved         Patterns: "save export"
//	UPL004 - Request cancelled        Patterns: "context canceled"
//	UPL005 - Request timeout          Patterns: "context deadline exceeded"
//
// # Lookup Errors (LKP001-LKP099)
//
//	LKP001 - Nothing found            Patterns: "not found"
//	LKP002 - Lookup service failed    Patterns: "http 5"
//	LKP003 - Lookup not configured    Patterns: "lookup disabled"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited            Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so more specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Load Errors (LOAD001-LOAD003)
	// A LoadError message lists each attempt's reason after its prefix, so
	// "load failed" must come before the per-attempt patterns.
	// =========================================================================
	{
		pattern: "no collection sources",
		msg: UserMessage{
			Message: "No collection sources are configured",
			Action:  "Set COLLECTION_SOURCES or enable the demo fallback",
			Code:    "LOAD003",
		},
	},
	{
		pattern: "load failed",
		msg: UserMessage{
			Message: "The collection could not be loaded from any source",
			Action:  "Check the configured collection sources or upload an export",
			Code:    "LOAD001",
		},
	},
	{
		pattern: "no records found",
		msg: UserMessage{
			Message: "No records were found in the collection export",
			Action:  "Make sure the export has a header row and data rows",
			Code:    "LOAD002",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Export a smaller collection or raise UPLOAD_MAX_FILE_SIZE",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "Collection file was not found",
			Action:  "Check the path in COLLECTION_SOURCES",
			Code:    "FILE002",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "Collection file could not be opened",
			Action:  "Check the file permissions",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV export to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The collection export is empty",
			Action:  "Please upload a CSV export with data rows",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Upload Errors (UPL001-UPL005)
	// =========================================================================
	{
		pattern: "not a csv",
		msg: UserMessage{
			Message: "Only CSV exports can be uploaded",
			Action:  "Export your collection as CSV and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "save export",
		msg: UserMessage{
			Message: "The upload was loaded but could not be saved",
			Action:  "It will be lost on restart. Check the database connection",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try again or check the source is reachable",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Lookup Errors (LKP001-LKP003)
	// =========================================================================
	{
		pattern: "lookup disabled",
		msg: UserMessage{
			Message: "This lookup is not configured",
			Action:  "Set the lookup credentials to enable it",
			Code:    "LKP003",
		},
	},
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "No matching article was found",
			Action:  "Try the search link instead",
			Code:    "LKP001",
		},
	},
	{
		pattern: "http 5",
		msg: UserMessage{
			Message: "The lookup service is unavailable",
			Action:  "Please try again later",
			Code:    "LKP002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// The first matching pattern wins; ERR000 if nothing matches.
//
// Example:
//
//	msg := MapError(core.ErrNoRecords)
//	// msg.Code == "LOAD002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern (not ERR000).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
