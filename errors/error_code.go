package errors

// ErrorCode is the machine-readable code returned in the error envelope.
type ErrorCode int32

const (
	ErrorCode_HTTP_OK          ErrorCode = 200
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1003
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1004
	ErrorCode_BUSY             ErrorCode = 1005

	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2001
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2002

	ErrorCode_UPLOAD_TOO_LARGE        ErrorCode = 3001
	ErrorCode_UPLOAD_UNSUPPORTED_TYPE ErrorCode = 3002
	ErrorCode_UPLOAD_MISSING_FILE     ErrorCode = 3003

	ErrorCode_ANALYSIS_NOT_FOUND ErrorCode = 4001

	ErrorCode_QUESTIONS_INVALID_ROLE ErrorCode = 5001

	ErrorCode_DB_QUERY_FAILED ErrorCode = 6003
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                 "HTTP_OK",
	ErrorCode_INTERNAL:                "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:        "INVALID_ARGUMENT",
	ErrorCode_UNAUTHENTICATED:         "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:         "INVALID_PAYLOAD",
	ErrorCode_BUSY:                    "BUSY",
	ErrorCode_AUTH_INVALID_TOKEN:      "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:      "AUTH_TOKEN_EXPIRED",
	ErrorCode_UPLOAD_TOO_LARGE:        "UPLOAD_TOO_LARGE",
	ErrorCode_UPLOAD_UNSUPPORTED_TYPE: "UPLOAD_UNSUPPORTED_TYPE",
	ErrorCode_UPLOAD_MISSING_FILE:     "UPLOAD_MISSING_FILE",
	ErrorCode_ANALYSIS_NOT_FOUND:      "ANALYSIS_NOT_FOUND",
	ErrorCode_QUESTIONS_INVALID_ROLE:  "QUESTIONS_INVALID_ROLE",
	ErrorCode_DB_QUERY_FAILED:         "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
