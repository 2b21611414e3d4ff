package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	Name  string `json:"name" validate:"required,notblank"`
	Phone string `json:"phone" validate:"omitempty,phone"`
	Plan  string `json:"plan" validate:"required,oneof=basic premium vip"`
}

func TestValidators(t *testing.T) {
	translator := NewTranslator()
	validate := NewValidator(translator)

	translated := func(t *testing.T, form contactForm) map[string]string {
		t.Helper()
		err := validate.Struct(form)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		out := make(map[string]string, len(verrs))
		for _, e := range verrs {
			out[e.Field()] = e.Translate(translator)
		}
		return out
	}

	tests := []struct {
		name string
		form contactForm
		want map[string]string
	}{
		{"valid", contactForm{Name: "Ann", Phone: "+1 (555) 010-2030", Plan: "vip"}, nil},
		{"required", contactForm{}, map[string]string{"name": "this field is required", "plan": "this field is required"}},
		{"blank", contactForm{Name: "   ", Plan: "basic"}, map[string]string{"name": "this field cannot be blank"}},
		{"phone", contactForm{Name: "Ann", Phone: "call me", Plan: "basic"}, map[string]string{"phone": "enter a valid phone number"}},
		{"oneof", contactForm{Name: "Ann", Plan: "gold"}, map[string]string{"plan": "plan must be one of [basic, premium, vip]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translated(t, tt.form))
		})
	}
}
