package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	SecretCode string  `json:"secret_code" validate:"required"`
	Name       *string `json:"name,omitempty" validate:"omitempty,max=5"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	long := "toolong"
	errs := Validate(sample{Name: &long})
	assert.Equal(t, map[string]string{"secret_code": "required", "name": "max"}, errs)
}

func TestValidateOK(t *testing.T) {
	assert.Nil(t, Validate(sample{SecretCode: "ABC234"}))
}
