package api

import (
	"sync"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moneyBody struct {
	Amount decimal.Decimal `binding:"required,money"`
}

func TestMoneyValidation(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators(), "registering twice is harmless")

	tests := []struct {
		amount string
		ok     bool
	}{
		{"40", true},
		{"40.5", true},
		{"40.25", true},
		{"0.01", true},
		{"40.255", false},
		{"-1", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(moneyBody{Amount: decimal.RequireFromString(tt.amount)})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

type foreignValidator struct{}

func (foreignValidator) ValidateStruct(any) error { return nil }
func (foreignValidator) Engine() any              { return struct{}{} }

func TestRegisterValidatorsReportsFailureOnEveryCall(t *testing.T) {
	original := binding.Validator
	t.Cleanup(func() {
		binding.Validator = original
		registerOnce, registerErr = sync.Once{}, nil
		require.NoError(t, RegisterValidators())
	})

	binding.Validator = foreignValidator{}
	registerOnce, registerErr = sync.Once{}, nil

	first := RegisterValidators()
	require.Error(t, first)
	assert.Equal(t, first, RegisterValidators())
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitOrigins(" https://a.example, ,https://b.example "))
	assert.Empty(t, splitOrigins(""))
}
