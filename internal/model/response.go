package model

// Response is the envelope every JSON endpoint writes.
type Response struct {
	Data    any     `json:"data,omitempty"`
	Error   *string `json:"error,omitempty"`
	Message string  `json:"message"`
}

// ErrorResponse builds an error envelope with the given message.
func ErrorResponse(errMsg string) Response {
	return Response{
		Error:   &errMsg,
		Message: "Error",
	}
}
