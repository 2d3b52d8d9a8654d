package values

// Response statuses shared by helpers and handlers. util.StatusCode maps
// them to HTTP status codes.
const (
	Success         = "success"
	Created         = "created"
	Deleted         = "deleted"
	Error           = "error"
	Failed          = "failed"
	BadRequestBody  = "bad_request"
	Unprocessable   = "unprocessable"
	NotAllowed      = "not_allowed"
	Conflict        = "conflict"
	NotFound        = "not_found"
	NotAuthorised   = "not_authorised"
	TokenExpired    = "token_expired"
	TooManyRequests = "too_many_requests"
	Unavailable     = "unavailable"
)

const (
	HeaderRequestSource = "X-Request-Source"
	HeaderRequestID     = "X-Request-ID"
)

type contextKey string

const (
	ContextTracingKey   contextKey = "tracing"
	ContextPrincipalKey contextKey = "principal"
)
