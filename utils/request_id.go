package utils

// RequestIDKey is the gin context key and response header carrying the request id.
const RequestIDKey = "X-Request-ID"
