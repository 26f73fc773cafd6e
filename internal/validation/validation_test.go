package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	valid := []string{
		"maria@example.com",
		"joao.silva+training@sub.example.co",
		"  padded@example.org  ",
		"user_99%x@my-domain.io",
	}
	for _, email := range valid {
		assert.True(t, Email(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"missing@tld",
		"@example.com",
		"user@.com",
		"user@example.c",
	}
	for _, email := range invalid {
		assert.False(t, Email(email), email)
	}
}

func TestPhone(t *testing.T) {
	assert.True(t, Phone("(11) 98765-4321"))
	assert.True(t, Phone("1187654321"))
	assert.True(t, Phone("+55 11 8765-4321"))

	assert.False(t, Phone("12345"))
	assert.False(t, Phone("119876543210"))
	assert.False(t, Phone(""))
}

func TestCPF(t *testing.T) {
	assert.True(t, CPF("111.444.777-35"))
	assert.True(t, CPF("11144477735"))
	assert.True(t, CPF("529.982.247-25"))

	// All-identical digits always fail regardless of checksum.
	for d := '0'; d <= '9'; d++ {
		same := strings.Repeat(string(d), 11)
		assert.False(t, CPF(same), same)
	}

	assert.False(t, CPF("111.444.777-36"))
	assert.False(t, CPF("111.444.776-35"))
	assert.False(t, CPF("1114447773"))
	assert.False(t, CPF(""))
}

func TestCPFChecksumRoundTrip(t *testing.T) {
	// For accepted numbers, recomputing both digits from the first nine
	// must reproduce the stored tenth and eleventh digits.
	accepted := []string{"11144477735", "52998224725"}
	for _, cpf := range accepted {
		require.True(t, CPF(cpf))
		d1 := checksumDigit(cpf, 9, 10)
		d2 := checksumDigit(cpf, 10, 11)
		assert.Equal(t, digit(cpf[9]), d1, cpf)
		assert.Equal(t, digit(cpf[10]), d2, cpf)
	}
}

func TestGradeAndProgressBounds(t *testing.T) {
	for _, v := range []float64{0, 0.5, 50, 99.99, 100} {
		assert.True(t, Grade(v), fmt.Sprintf("grade %v", v))
		assert.True(t, Progress(v), fmt.Sprintf("progress %v", v))
	}
	for _, v := range []float64{-0.01, -1, 100.01, 1000} {
		assert.False(t, Grade(v), fmt.Sprintf("grade %v", v))
		assert.False(t, Progress(v), fmt.Sprintf("progress %v", v))
	}
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type payload struct {
		CPF   string `validate:"omitempty,cpf"`
		Phone string `validate:"omitempty,brphone"`
	}

	require.NoError(t, v.Struct(payload{CPF: "111.444.777-35", Phone: "(11) 98765-4321"}))
	require.Error(t, v.Struct(payload{CPF: "111.111.111-11"}))
	require.Error(t, v.Struct(payload{Phone: "12345"}))
}
