package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckKeepsFirstMessage(t *testing.T) {
	v := New()
	assert.True(t, v.Valid())

	v.Check(false, "phone", "must be provided")
	v.Check(false, "phone", "must be a valid phone number")
	v.Check(true, "name", "must be provided")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"phone": "must be provided"}, v.Errors)
}

func TestPermittedValue(t *testing.T) {
	assert.True(t, PermittedValue("medical", "family", "friend", "medical"))
	assert.False(t, PermittedValue("coworker", "family", "friend", "medical"))
}

func TestPhoneRX(t *testing.T) {
	for _, ok := range []string{"+1-555-0101", "(415) 555 0199", "911000"} {
		assert.True(t, Matches(ok, PhoneRX), ok)
	}
	for _, bad := range []string{"", "12", "call me", "+1-555-0101-0101-0101-0101"} {
		assert.False(t, Matches(bad, PhoneRX), bad)
	}
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(37.7749, -122.4194))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}
