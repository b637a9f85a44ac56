package upload

// UpdateRequest is the body of PUT /api/uploads/:id.
type UpdateRequest struct {
	SecretCode  string  `json:"secret_code" validate:"required"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Tags        *string `json:"tags,omitempty"`
}

// DeleteRequest is the optional body of DELETE /api/uploads/:id. The code may
// also be passed as ?secret_code=.
type DeleteRequest struct {
	SecretCode string `json:"secret_code"`
}
