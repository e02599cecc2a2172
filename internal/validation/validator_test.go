package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type registerRequest struct {
	Name       string  `validate:"required,min=2"`
	Email      string  `validate:"email"`
	RentalMode string  `validate:"oneof=all_inclusive prorated"`
	Occupants  int     `validate:"min=1,max=20"`
	BaseRent   float64 `validate:"gt=0"`
	Note       *string `validate:"min=3"`
}

func TestValidateAccepts(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&registerRequest{
		Name:       "Ana",
		Email:      "ana@example.com",
		RentalMode: "prorated",
		Occupants:  2,
		BaseRent:   450,
	})
	assert.NoError(t, err)
}

func TestValidateRejects(t *testing.T) {
	v := NewValidator()

	valid := registerRequest{
		Name:       "Ana",
		Email:      "ana@example.com",
		RentalMode: "prorated",
		Occupants:  2,
		BaseRent:   450,
	}

	cases := []struct {
		name   string
		mutate func(*registerRequest)
	}{
		{"missing name", func(r *registerRequest) { r.Name = "" }},
		{"name too short", func(r *registerRequest) { r.Name = "A" }},
		{"bad email", func(r *registerRequest) { r.Email = "ana" }},
		{"unknown rental mode", func(r *registerRequest) { r.RentalMode = "weekly" }},
		{"zero occupants", func(r *registerRequest) { r.Occupants = 0 }},
		{"too many occupants", func(r *registerRequest) { r.Occupants = 50 }},
		{"zero rent", func(r *registerRequest) { r.BaseRent = 0 }},
		{"note too short", func(r *registerRequest) { s := "ab"; r.Note = &s }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			assert.Error(t, v.Validate(&req))
		})
	}
}

func TestValidateNilPointerOptional(t *testing.T) {
	v := NewValidator()

	req := registerRequest{
		Name:       "Ana",
		Email:      "ana@example.com",
		RentalMode: "prorated",
		Occupants:  2,
		BaseRent:   450,
		Note:       nil,
	}
	assert.NoError(t, v.Validate(&req))
}
