package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorConflictingTerminalEvents signals a broken event-store contract:
// an animal carrying both a sale and a death record.
var ErrorConflictingTerminalEvents = errors.New("animal has both a sale and a death record")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
