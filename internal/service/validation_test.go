package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCertificateNumber(t *testing.T) {
	valid := []string{"CERT-2024-000042", "TESDA-0001", " abc123 ", strings.Repeat("9", 40)}
	for _, number := range valid {
		assert.True(t, ValidCertificateNumber(number), number)
	}
	invalid := []string{"", "../x", "CERT/2024", "CERT 2024", "-CERT", strings.Repeat("9", 41)}
	for _, number := range invalid {
		assert.False(t, ValidCertificateNumber(number), number)
	}
}

func TestValidatorCertificateTag(t *testing.T) {
	v := NewValidator()
	type payload struct {
		Number string `validate:"omitempty,certno"`
	}
	assert.NoError(t, v.Struct(payload{}))
	assert.NoError(t, v.Struct(payload{Number: "CERT-1"}))
	assert.Error(t, v.Struct(payload{Number: "CERT/../1"}))
}
