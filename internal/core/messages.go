package core

// messages.go maps technical errors to user-facing messages with codes
// for support reference. Typed errors are matched first via errors.As;
// string patterns are the fallback for errors that cross the transport
// boundary as text. The first matching pattern wins, so specific
// patterns come before general ones.
//
// Codes:
//
//	FILE001 - file exceeds the size cap
//	FILE002 - declared content type is not text/csv
//	FILE003 - uploaded file is empty
//	FILE004 - no file was provided in the request
//	CSV001  - decode failure (row/field detail preserved verbatim)
//	SES001  - session not found or expired
//	RATE001 - request rate limit hit
//	ERR000  - fallback for anything unrecognized

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage is user-friendly error information with a support code.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the 400 KB size limit",
			Action:  "Pick a smaller CSV file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "not a csv",
		msg: UserMessage{
			Message: "File is not a CSV",
			Action:  "Upload a file with content type text/csv",
			Code:    "FILE002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with a header row",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Session not found",
			Action:  "The session may have expired; reload the page",
			Code:    "SES001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message.
//
// Rejections keep their specific reason, and decode errors keep their
// structured row/field detail verbatim in the message; everything else
// falls through pattern matching to a generic ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var rej *Rejection
	if errors.As(err, &rej) {
		switch rej.Reason {
		case ReasonTooBig:
			return UserMessage{
				Message: fmt.Sprintf("File is %d bytes; the limit is 400,000", rej.Size),
				Action:  "Pick a smaller CSV file",
				Code:    "FILE001",
			}
		case ReasonNotCSV:
			return UserMessage{
				Message: fmt.Sprintf("Declared content type is %q, not text/csv", rej.ContentType),
				Action:  "Upload a file with content type text/csv",
				Code:    "FILE002",
			}
		}
	}

	var derr *DecodeError
	if errors.As(err, &derr) {
		return UserMessage{
			Message: "CSV decode failed: " + derr.Error(),
			Action:  "Fix the reported row and upload again",
			Code:    "CSV001",
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

// FormatUserError renders a mapped error as a single display string:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
