package types

type SuccessEnvelope struct {
	Data any `json:"data"`
	// Warnings carries advisory notes, stock shortages for example, that do
	// not fail the request.
	Warnings any `json:"warnings,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
