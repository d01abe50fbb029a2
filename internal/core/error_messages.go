package core

// error_messages.go maps technical errors to user-friendly messages with
// codes for support reference. When users encounter errors, they can quote
// the error code to support staff for faster diagnosis.
//
// # Report Errors (RPT001-RPT099)
//
//	RPT001 - Missing key column: the grouping column (e.g. BRM) is absent
//	         Action: Check that your file has the grouping column header
//	         Match: ErrSchemaMismatch
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Unknown schema: the requested report schema is not configured
//	         Match: ErrUnknownSchema
//
// # Template Errors (TPL001-TPL099)
//
//	TPL001 - Template unavailable: the output template could not be opened
//	         Match: ErrTemplate
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large", "request body too large"
//	FILE002 - Invalid CSV             Patterns: "invalid csv", "parse error on line"
//	FILE003 - Invalid workbook        Patterns: "invalid workbook", "zip: not a valid zip file"
//	FILE004 - No file                 Patterns: "no file provided"
//	FILE005 - Empty file              Match: ErrEmptyFile
//	FILE006 - Unsupported format      Match: ErrUnsupportedFormat
//
// # Run Errors (UPL001-UPL099)
//
//	UPL002 - System busy              Match: ErrTooManyReports
//	UPL004 - Request cancelled        Match: context.Canceled
//	UPL005 - Request timeout          Match: context.DeadlineExceeded
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests       Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Support staff should check the
// application logs for the original technical error.
//
// Typed errors are matched first with errors.Is, then the pattern table is
// searched case-insensitively with strings.Contains. The first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorTarget maps a sentinel error to its user message.
type errorTarget struct {
	target error
	msg    UserMessage
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorTargets = []errorTarget{
	{
		target: ErrSchemaMismatch,
		msg: UserMessage{
			Message: "Missing grouping column in the report",
			Action:  "Please check your file",
			Code:    "RPT001",
		},
	},
	{
		target: ErrUnsupportedFormat,
		msg: UserMessage{
			Message: "Unsupported file format",
			Action:  "Please upload an Excel or CSV file",
			Code:    "FILE006",
		},
	},
	{
		target: ErrEmptyFile,
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with a header row and data rows",
			Code:    "FILE005",
		},
	},
	{
		target: ErrUnknownSchema,
		msg: UserMessage{
			Message: "Unknown report type",
			Action:  "Choose one of the configured report types",
			Code:    "SCH001",
		},
	},
	{
		target: ErrTemplate,
		msg: UserMessage{
			Message: "The report template could not be opened",
			Action:  "Contact support to restore the report template",
			Code:    "TPL001",
		},
	},
	{
		target: ErrTooManyReports,
		msg: UserMessage{
			Message: "System is busy generating other reports",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE004)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the report into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the report into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent quoting",
			Code:    "FILE002",
		},
	},
	{
		pattern: "parse error on line",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent quoting",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid workbook",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Re-save the report as .xlsx and upload again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "not a valid zip file",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Re-save the report as .xlsx and upload again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an Excel or CSV report to upload",
			Code:    "FILE004",
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

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A missing key column names the column in the message:
//
//	msg := MapError(&SchemaMismatchError{Column: "BRM"})
//	// msg.Code == "RPT001"
//	// msg.Message == "Missing 'BRM' column in the report"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var sm *SchemaMismatchError
	if errors.As(err, &sm) {
		return UserMessage{
			Message: fmt.Sprintf("Missing '%s' column in the report", sm.Column),
			Action:  "Please check your file",
			Code:    "RPT001",
		}
	}

	for _, et := range errorTargets {
		if errors.Is(err, et.target) {
			return et.msg
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether an error maps to a specific message rather
// than the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
