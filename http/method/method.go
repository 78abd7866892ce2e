package method

type Method uint8

const (
	Unknown Method = iota
	GET
	POST
)

// List contains all the supported HTTP methods. Unknown method is not included.
var List = []Method{GET, POST}

// Parse returns the method corresponding to the token. Anything outside the allow-list,
// including differently cased tokens, is Unknown.
func Parse(str string) Method {
	switch str {
	case "GET":
		return GET
	case "POST":
		return POST
	default:
		return Unknown
	}
}

func (m Method) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	default:
		return "Unknown"
	}
}
