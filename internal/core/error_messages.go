package core

// # Error Codes Reference
//
// User-facing messages carry a code that operators can look up here.
//
// # Ingestion Errors (ING001-ING099)
//
//	ING001 - Malformed file name
//	         Patterns: "malformed filename"
//	ING002 - File name code matches no series
//	         Patterns: "unknown series code"
//	ING003 - Entity names in a file could not be matched
//	         Patterns: "unresolved entities"
//	ING004 - No files in the request
//	         Patterns: "empty file batch"
//	ING005 - Entity registry is empty
//	         Patterns: "no entities registered"
//	ING006 - File body could not be decoded
//	         Patterns: "unreadable file"
//	ING007 - Series id does not exist
//	         Patterns: "series not found"
//	ING008 - Unknown classification mode
//	         Patterns: "invalid classification mode"
//	ING009 - Period year out of range
//	         Patterns: "invalid period"
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused      Patterns: "connection refused"
//	DB005 - Connection reset        Patterns: "connection reset"
//	DB006 - Timeout                 Patterns: "timeout"
//	DB007 - Deadlock                Patterns: "deadlock"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large        Patterns: "file too large"
//	FILE002 - Too many files        Patterns: "too many files"
//	FILE003 - Invalid upload form   Patterns: "multipart"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - Ingest slot busy       Patterns: "too many concurrent"
//	UPL004 - Request cancelled      Patterns: "context canceled"
//	UPL005 - Request timed out      Patterns: "context deadline exceeded"
//
// # Rate Limiting
//
//	RATE001 - Too many requests     Patterns: "rate limit"
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns precede general ones. ERR000 is the
// fallback; check the application log for the technical error behind it.

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
	// Ingestion validation (ING001-ING009)
	{
		pattern: "malformed filename",
		msg: UserMessage{
			Message: "File name does not follow the naming convention",
			Action:  `Rename the file to "<code> - <description>.csv" or ".xlsx", e.g. "001 - Population.csv"`,
			Code:    "ING001",
		},
	},
	{
		pattern: "unknown series code",
		msg: UserMessage{
			Message: "The code in the file name does not match any indicator",
			Action:  "Check the leading number of the file name against the indicator list",
			Code:    "ING002",
		},
	},
	{
		pattern: "unresolved entities",
		msg: UserMessage{
			Message: "Some names in the file do not match any registered city",
			Action:  "Fix the spelling of the listed names and upload the whole batch again",
			Code:    "ING003",
		},
	},
	{
		pattern: "empty file batch",
		msg: UserMessage{
			Message: "No files were uploaded",
			Action:  "Select at least one CSV or XLSX file",
			Code:    "ING004",
		},
	},
	{
		pattern: "no entities registered",
		msg: UserMessage{
			Message: "No cities are registered",
			Action:  "Load the city registry before uploading data",
			Code:    "ING005",
		},
	},
	{
		pattern: "unreadable file",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Re-export the file as UTF-8 CSV or XLSX and try again",
			Code:    "ING006",
		},
	},
	{
		pattern: "series not found",
		msg: UserMessage{
			Message: "Indicator not found",
			Action:  "Refresh the indicator list and try again",
			Code:    "ING007",
		},
	},
	{
		pattern: "invalid classification mode",
		msg: UserMessage{
			Message: "Unknown classification mode",
			Action:  "Use equalCount, equalInterval, valueQuartile or manual",
			Code:    "ING008",
		},
	},
	{
		pattern: "invalid period",
		msg: UserMessage{
			Message: "Invalid period year",
			Action:  "Use a four-digit year",
			Code:    "ING009",
		},
	},

	// Request body errors (VAL001)
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request body against the API documentation",
			Code:    "VAL001",
		},
	},

	// Database connection errors (DB004-DB007)
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Upload fewer files at once or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// Request body errors (FILE001-FILE003)
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file or remove unused columns",
			Code:    "FILE001",
		},
	},
	{
		pattern: "too many files",
		msg: UserMessage{
			Message: "Too many files in one upload",
			Action:  "Upload the files in smaller batches",
			Code:    "FILE002",
		},
	},
	{
		pattern: "multipart",
		msg: UserMessage{
			Message: "Upload form could not be read",
			Action:  `Send the files as multipart form field "files"`,
			Code:    "FILE003",
		},
	},

	// Ingest slot and request lifetime (UPL002-UPL005)
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "Another upload is being processed",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
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
			Action:  "Upload fewer files at once or check your connection",
			Code:    "UPL005",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern's message, or the ERR000 fallback.
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

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
