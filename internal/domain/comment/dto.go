package comment

type AddRequest struct {
	Name    string `json:"name"`
	Comment string `json:"comment" validate:"required"`
}
