package detection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"signalguard/pkg/logger"
)

func newTestURLScanner() *URLScanner {
	return NewURLScanner(nil, logger.NewDefault())
}

func TestURLScanTrustedDomain(t *testing.T) {
	s := newTestURLScanner()

	result := s.Scan(context.Background(), "https://www.google.com/search?q=weather")
	assert.True(t, result.Trusted)
	assert.Equal(t, 10.0, result.Score)
}

func TestURLScanSuspiciousTLD(t *testing.T) {
	s := newTestURLScanner()

	result := s.Scan(context.Background(), "http://login-secure-bank.xyz")
	assert.False(t, result.Trusted)
	assert.GreaterOrEqual(t, result.Score, 50.0)
	assert.Contains(t, result.Findings, "suspicious_tld")
	assert.Contains(t, result.Findings, "hyphenated_domain")
	assert.Contains(t, result.Findings, "no_https")
}

func TestURLScanBrandSpoof(t *testing.T) {
	s := newTestURLScanner()

	result := s.Scan(context.Background(), "http://fake-bank.xyz")
	assert.Contains(t, result.Findings, "brand_spoof")
	assert.GreaterOrEqual(t, result.Score, 65.0)
}

func TestURLScanIPHost(t *testing.T) {
	s := newTestURLScanner()

	result := s.Scan(context.Background(), "http://192.168.0.1/update")
	assert.Contains(t, result.Findings, "ip_host")
	assert.GreaterOrEqual(t, result.Score, 40.0)
}

func TestURLScanShortener(t *testing.T) {
	s := newTestURLScanner()

	result := s.Scan(context.Background(), "https://bit.ly/3xYz12")
	assert.Contains(t, result.Findings, "shortener")
}

func TestURLScanEmptyInput(t *testing.T) {
	s := newTestURLScanner()

	result := s.Scan(context.Background(), "")
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Trusted)
}

func TestURLScanSchemelessInput(t *testing.T) {
	s := newTestURLScanner()

	result := s.Scan(context.Background(), "example.com/page")
	assert.Equal(t, "example.com", result.Host)
	assert.Contains(t, result.Findings, "no_https")
}
