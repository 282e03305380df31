package core

// error_messages.go maps technical errors to coded, user-facing messages.
//
// # Error Codes Reference
//
// Users can quote the code to support staff. Codes are grouped by category.
//
// # Import Format Errors (JSON001-JSON099)
//
//	JSON001 - Invalid JSON: the file is not well-formed JSON
//	          Action: Check the file in a JSON validator, or export it again
//	JSON002 - Wrong shape: the top level is not an array of objects
//	          Action: Wrap the records in [ ... ], one object per part
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the body exceeds the import size limit
//	FILE002 - Unreadable file: the body could not be read or decoded
//	FILE003 - No file: the request carried no file
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Name required: an edited part has an empty name
//	VAL002 - Invalid quantity: the quantity is negative or not a number
//
// # Record Errors (REC001-REC099)
//
//	REC001 - Not found: no part has the requested id
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: all import slots are taken
//	IMP002 - Cancelled: the request was cancelled or timed out
//
// # Export Errors (VOC001-VOC099)
//
//	VOC001 - Unknown vocabulary: the requested export vocabulary does not exist
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - Storage unavailable: the database could not be reached
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: check the application log for the technical error
//
// # Matching
//
// Known sentinel errors are matched first with errors.Is, so wrapping keeps
// the code stable. Errors from drivers and middleware that carry no sentinel
// fall back to case-insensitive substring patterns. The first match wins.

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

var (
	msgInvalidJSON = UserMessage{
		Message: "The file is not valid JSON",
		Action:  "Check the file in a JSON validator or export it again",
		Code:    "JSON001",
	}
	msgJSONNotArray = UserMessage{
		Message: "JSON must be an array of objects",
		Action:  "Wrap the parts in [ ... ] with one object per part",
		Code:    "JSON002",
	}
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum import size",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}
	msgUnreadable = UserMessage{
		Message: "The file could not be read",
		Action:  "Save the file again as CSV or JSON and retry",
		Code:    "FILE002",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV or JSON file to import",
		Code:    "FILE003",
	}
	msgNameRequired = UserMessage{
		Message: "Name is required",
		Action:  "Enter a name for the part",
		Code:    "VAL001",
	}
	msgInvalidQuantity = UserMessage{
		Message: "Quantity must be a number of zero or more",
		Action:  "Correct the quantity and save again",
		Code:    "VAL002",
	}
	msgNotFound = UserMessage{
		Message: "Part not found",
		Action:  "Reload the list; the part may have been deleted",
		Code:    "REC001",
	}
	msgTooManyImports = UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled or timed out",
		Action:  "Please try again",
		Code:    "IMP002",
	}
	msgUnknownVocabulary = UserMessage{
		Message: "Unknown export vocabulary",
		Action:  "Choose one of the listed vocabularies",
		Code:    "VOC001",
	}
	msgStorage = UserMessage{
		Message: "Inventory storage is unavailable",
		Action:  "Please try again in a few moments",
		Code:    "STO001",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// sentinelMessages is checked in order with errors.Is.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrJSONNotArray, msgJSONNotArray},
	{ErrInvalidJSON, msgInvalidJSON},
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrUnreadable, msgUnreadable},
	{ErrNoFile, msgNoFile},
	{ErrNameRequired, msgNameRequired},
	{ErrInvalidQuantity, msgInvalidQuantity},
	{ErrNotFound, msgNotFound},
	{ErrTooManyImports, msgTooManyImports},
	{ErrUnknownVocabulary, msgUnknownVocabulary},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgCancelled},
}

// errorPattern maps a lowercase substring to a message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns covers errors that reach the service without a sentinel.
var errorPatterns = []errorPattern{
	{"connection refused", msgStorage},
	{"connection reset", msgStorage},
	{"database is locked", msgStorage},
	{"context canceled", msgCancelled},
	{"context deadline exceeded", msgCancelled},
	{"request body too large", msgFileTooLarge},
	{"rate limit", msgRateLimited},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
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

// FormatUserError renders "Message (Code: XXX). Action".
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

// UserError pairs a technical error with its user-facing message.
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
