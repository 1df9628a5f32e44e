package probe

import "github.com/nao1215/linkvalidator/internal/model"

// reasonPhrases maps HTTP status codes to the phrases shown in reports.
// The table is fixed and includes a few non-standard codes (449, 450, 509)
// that some servers still send.
var reasonPhrases = map[int]string{
	0:   model.LabelUnknown,
	100: "Continue",
	101: "Switching Protocols",
	102: "Processing",
	200: model.LabelOK,
	201: "Created",
	202: "Accepted",
	203: "Non-Authoritative Information",
	204: "No Content",
	205: "Reset Content",
	206: "Partial Content",
	207: "Multi-Status",
	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	305: "Use Proxy",
	306: "Switch Proxy",
	307: "Temporary Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Request Entity Too Large",
	414: "Request-URI Too Long",
	415: "Unsupported Media Type",
	416: "Requested Range Not Satisfiable",
	417: "Expectation Failed",
	418: "I'm a teapot",
	422: "Unprocessable Entity",
	423: "Locked",
	424: "Failed Dependency",
	425: "Unordered Collection",
	426: "Upgrade Required",
	449: "Retry With",
	450: "Blocked by Windows Parental Controls",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
	506: "Variant Also Negotiates",
	507: "Insufficient Storage",
	509: "Bandwidth Limit Exceeded",
	510: "Not Extended",
}

// StatusLabel returns the reason phrase for code. Codes missing from the
// table get the generic "Invalid or unknown error" label.
func StatusLabel(code int) string {
	if phrase, ok := reasonPhrases[code]; ok {
		return phrase
	}
	return model.LabelUnknown
}
