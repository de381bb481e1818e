package utils

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vajra/internal/models"
)

func TestGenerateOTPRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestGenerateOTPVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 9000 possible codes; 50 draws collapsing to a handful would mean a broken source.
	assert.Greater(t, len(seen), 25)
}

func TestCalculateTotal(t *testing.T) {
	decode := func(raw string) []models.OrderItem {
		var items []models.OrderItem
		require.NoError(t, json.Unmarshal([]byte(raw), &items))
		return items
	}

	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"empty", `[]`, 0},
		{"numbers", `[{"name":"Ring","price":10.5,"quantity":2}]`, 21},
		{"strings", `[{"name":"Ring","price":"100","quantity":"2"}]`, 200},
		{"missing quantity counts once", `[{"name":"Ring","price":40}]`, 40},
		{"unparseable price", `[{"name":"Ring","price":"abc","quantity":3}]`, 0},
		{"several", `[{"price":"1,200","quantity":1},{"price":50,"quantity":"3"}]`, 151},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateTotal(decode(tt.raw)), 1e-9)
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "s3cret"))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	_, err = HashPassword(strings.Repeat("x", MaxPasswordBytes))
	assert.NoError(t, err)
}

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=12"`
}

func TestValidateFormatsFieldMessages(t *testing.T) {
	err := Validate(signup{Email: "not-an-email", Password: "abc"})
	require.Error(t, err)

	msgs := FormatValidationErrors(err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "email", msgs[0].Field)
	assert.Equal(t, "email must be a valid email address", msgs[0].Message)
	assert.Equal(t, "password must be at least 6 characters long", msgs[1].Message)
	assert.Equal(t, msgs[0].Message, FirstValidationMessage(err))

	assert.NoError(t, Validate(signup{Email: "a@example.com", Password: "abcdef"}))

	err = Validate(signup{Email: "a@example.com", Password: "abcdefghijklm"})
	assert.Equal(t, "password must be at most 12 characters long", FirstValidationMessage(err))
	assert.Nil(t, FormatValidationErrors(assert.AnError))
}
