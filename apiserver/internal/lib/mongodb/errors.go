package mongodb

import (
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

const duplicateKeyErrorCode = 11000

// DuplicateKeyFields reports whether the provided error is a single-document
// write failure caused by a unique index violation and, if so, the names of
// the fields covered by the violated index. Field names come from the
// server's keyPattern when present and from the "dup key" portion of the
// message otherwise. The returned slice may be empty if neither is available.
func DuplicateKeyFields(err error) ([]string, bool) {
	writeException, ok := errors.Cause(err).(mongo.WriteException)
	if !ok {
		return nil, false
	}
	if len(writeException.WriteErrors) != 1 ||
		writeException.WriteErrors[0].Code != duplicateKeyErrorCode {
		return nil, false
	}
	writeErr := writeException.WriteErrors[0]
	if fields := keyPatternFields(writeErr); len(fields) > 0 {
		return fields, true
	}
	return dupKeyMessageFields(writeErr.Message), true
}

func keyPatternFields(writeErr mongo.WriteError) []string {
	keyPattern, ok := writeErr.Raw.Lookup("keyPattern").DocumentOK()
	if !ok {
		return nil
	}
	elements, err := keyPattern.Elements()
	if err != nil {
		return nil
	}
	fields := make([]string, len(elements))
	for i, element := range elements {
		fields[i] = element.Key()
	}
	return fields
}

// dupKeyMessageFields extracts the first field name from messages that look
// like:
//
//	E11000 duplicate key error collection: db.users index: email_1 dup key: { email: "..." }
func dupKeyMessageFields(msg string) []string {
	const marker = "dup key: {"
	i := strings.Index(msg, marker)
	if i < 0 {
		return nil
	}
	rest := strings.TrimSpace(msg[i+len(marker):])
	j := strings.Index(rest, ":")
	if j <= 0 {
		return nil
	}
	return []string{strings.TrimSpace(rest[:j])}
}

// HasField returns true if fields contains field.
func HasField(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
