package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"signalguard/pkg/logger"
)

func TestPhishingHighPressureEmail(t *testing.T) {
	d := NewPhishingDetector(logger.NewDefault())

	result := d.Analyze("URGENT: verify your account immediately or it will be suspended. " +
		"Click here to confirm your payment at http://secure-pay.example/login before the offer expires.")
	assert.GreaterOrEqual(t, result.Score, 70.0)
	assert.NotEmpty(t, result.UrgencyHits)
	assert.Contains(t, result.ActionHits, "verify_account")
	assert.Equal(t, 1, result.URLCount)
}

func TestPhishingPressureWithExposedPassword(t *testing.T) {
	d := NewPhishingDetector(logger.NewDefault())

	result := d.Analyze("URGENT: Your account will be suspended. My password is hunter2secret.")
	assert.GreaterOrEqual(t, result.Score, 80.0)
	assert.Contains(t, result.UrgencyHits, "urgent")
	assert.Contains(t, result.FinancialHits, "password")
}

func TestPhishingBenignEmail(t *testing.T) {
	d := NewPhishingDetector(logger.NewDefault())

	result := d.Analyze("Hi Sam, the slides from today's review are attached. See you Thursday.")
	assert.LessOrEqual(t, result.Score, 15.0)
	assert.Empty(t, result.ActionHits)
}

func TestPhishingAllCapsBoost(t *testing.T) {
	d := NewPhishingDetector(logger.NewDefault())

	shouting := d.Analyze("YOUR ACCOUNT HAS BEEN SUSPENDED. ACT NOW TO RESTORE ACCESS.")
	calm := d.Analyze("Your account has been suspended. Act now to restore access.")
	assert.Greater(t, shouting.Score, calm.Score)
}

func TestPhishingEmptyInput(t *testing.T) {
	d := NewPhishingDetector(logger.NewDefault())

	result := d.Analyze("")
	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.UrgencyHits)
}
