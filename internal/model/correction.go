package model

// CorrectionRequest is the body of a correction request.
type CorrectionRequest struct {
	Text string `json:"text"`
}

// CorrectionResponse is the result of a correction request. Corrected is the
// model output verbatim; on failure Error and Hint are set instead.
type CorrectionResponse struct {
	ID        string `json:"id,omitempty"`
	Original  string `json:"original"`
	Corrected string `json:"corrected,omitempty"`
	Error     string `json:"error,omitempty"`
	Hint      string `json:"hint,omitempty"`
}
