package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatWelcomeIncludesWifiCredentials(t *testing.T) {
	msg := FormatWelcome("Ana", "CasaVelPra", "s3cret")

	assert.Contains(t, msg, "Welcome, Ana!")
	assert.Contains(t, msg, "Wi-Fi network: CasaVelPra")
	assert.Contains(t, msg, "Wi-Fi password: s3cret")
}

func TestFormatWelcomeWithoutWifi(t *testing.T) {
	msg := FormatWelcome("Ana", "", "")

	assert.Contains(t, msg, "Welcome, Ana!")
	assert.NotContains(t, msg, "Wi-Fi")
}
