package types

// SuccessEnvelope wraps every 2xx payload as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// MessageResponse is the payload of mutations that return no resource.
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// APIError carries a stable code for clients and a public message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx payload as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
