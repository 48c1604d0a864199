package common

import "unicode/utf8"

// StatusCharLimit is the default status length accepted by instances.
const StatusCharLimit = 500

// Remaining reports how many characters are left before limit.
// The result is negative when text is over the limit.
func Remaining(text string, limit int) int {
	return limit - utf8.RuneCountInString(text)
}
