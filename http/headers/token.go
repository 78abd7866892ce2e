package headers

// tokenChars marks every byte allowed in a token (RFC 9110, 5.6.2).
var tokenChars = [256]bool{
	'!': true, '#': true, '$': true, '%': true, '&': true, '\'': true, '*': true,
	'+': true, '-': true, '.': true, '^': true, '_': true, '`': true, '|': true, '~': true,
}

func init() {
	for c := '0'; c <= '9'; c++ {
		tokenChars[c] = true
	}

	for c := 'a'; c <= 'z'; c++ {
		tokenChars[c] = true
		tokenChars[c-'a'+'A'] = true
	}
}

// IsToken reports whether the string is a non-empty token, which is the grammar header
// names must follow.
func IsToken(str string) bool {
	if len(str) == 0 {
		return false
	}

	for i := 0; i < len(str); i++ {
		if !tokenChars[str[i]] {
			return false
		}
	}

	return true
}
