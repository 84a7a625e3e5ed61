package paginate

import (
	"strconv"
	"strings"
)

// Navigation payloads are "mail_<address>_<offset>": a literal tag, the
// address and the offset, nothing else. The whole pagination state travels
// in the button payload, so any click is resolved without session state.
const (
	cursorTag = "mail"
	cursorSep = "_"
)

// EncodeCursor builds a navigation payload
func EncodeCursor(address string, offset int) string {
	return cursorTag + cursorSep + address + cursorSep + strconv.Itoa(offset)
}

// DecodeCursor parses a navigation payload. Malformed payloads (wrong field
// count, non-numeric offset) return ok=false and are ignored by callers.
// The separator is never escaped, so an address containing "_" splits into
// extra fields and its pagination buttons are dead. Known limitation; the
// wire format predates this code and cannot change without breaking
// buttons already sent.
func DecodeCursor(payload string) (address string, offset int, ok bool) {
	parts := strings.Split(payload, cursorSep)
	if len(parts) != 3 || parts[0] != cursorTag {
		return "", 0, false
	}
	offset, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, false
	}
	return parts[1], offset, true
}
