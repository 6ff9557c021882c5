package detection

import (
	"context"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"signalguard/internal/infrastructure/cache"
	"signalguard/pkg/logger"
)

// URLResult is the URL detector's output
type URLResult struct {
	Score       float64  `json:"score"`
	Probability float64  `json:"probability"`
	Host        string   `json:"host"`
	Findings    []string `json:"findings"`
	Trusted     bool     `json:"trusted"`
	Cached      bool     `json:"cached"`
}

// URLScanner scores URLs with lexical features. The Redis cache is
// optional; a nil cache disables verdict caching.
type URLScanner struct {
	suspiciousTLDs map[string]bool
	trustedDomains map[string]bool
	keywords       []string
	brandKeywords  []string
	shorteners     map[string]bool
	ipHost         *regexp.Regexp
	cache          *cache.RedisCache
	logger         *logger.Logger
}

// NewURLScanner builds the lexical feature tables
func NewURLScanner(redisCache *cache.RedisCache, log *logger.Logger) *URLScanner {
	return &URLScanner{
		suspiciousTLDs: map[string]bool{
			"xyz": true, "top": true, "tk": true, "ml": true, "ga": true,
			"cf": true, "gq": true, "click": true, "loan": true, "work": true,
		},
		trustedDomains: map[string]bool{
			"google.com": true, "microsoft.com": true, "apple.com": true,
			"amazon.com": true, "github.com": true, "wikipedia.org": true,
			"paypal.com": true, "linkedin.com": true,
		},
		keywords: []string{
			"login", "verify", "secure", "account", "update", "bank",
			"confirm", "signin", "password", "wallet",
		},
		brandKeywords: []string{
			"paypal", "amazon", "microsoft", "apple", "google", "netflix",
			"facebook", "instagram", "bank", "chase", "hsbc", "barclays",
		},
		shorteners: map[string]bool{
			"bit.ly": true, "tinyurl.com": true, "t.co": true,
			"goo.gl": true, "ow.ly": true, "is.gd": true,
		},
		ipHost: regexp.MustCompile(`^\d{1,3}(?:\.\d{1,3}){3}$`),
		cache:  redisCache,
		logger: log.WithComponent("url-scanner"),
	}
}

// Scan scores one URL for phishing/malware likelihood
func (s *URLScanner) Scan(ctx context.Context, rawURL string) URLResult {
	result := URLResult{Findings: []string{}}

	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return result
	}

	if cached, ok := s.cachedScore(ctx, trimmed); ok {
		cached.Cached = true
		return cached
	}

	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		result.Findings = append(result.Findings, "unparseable")
		result.Probability = 0.5
		result.Score = 50
		return result
	}

	host := strings.ToLower(parsed.Hostname())
	result.Host = host

	if s.trustedDomains[registrableDomain(host)] {
		result.Trusted = true
		result.Probability = 0.1
		result.Score = 10
		s.storeScore(ctx, trimmed, result)
		return result
	}

	prob := 0.1

	if len(trimmed) > 75 {
		prob += 0.1
		result.Findings = append(result.Findings, "long_url")
	}
	if strings.Count(host, ".") >= 3 {
		prob += 0.1
		result.Findings = append(result.Findings, "deep_subdomain")
	}
	if strings.Contains(host, "-") {
		prob += 0.05
		result.Findings = append(result.Findings, "hyphenated_domain")
	}
	if strings.ContainsAny(host, "0123456789") {
		prob += 0.05
		result.Findings = append(result.Findings, "digits_in_domain")
	}
	if strings.Contains(candidate, "@") {
		prob += 0.15
		result.Findings = append(result.Findings, "at_in_url")
	}
	if s.ipHost.MatchString(host) || net.ParseIP(host) != nil {
		prob += 0.2
		result.Findings = append(result.Findings, "ip_host")
	}
	if parsed.Scheme != "https" {
		prob += 0.1
		result.Findings = append(result.Findings, "no_https")
	}
	if tld := host[strings.LastIndex(host, ".")+1:]; s.suspiciousTLDs[tld] {
		prob += 0.25
		result.Findings = append(result.Findings, "suspicious_tld")
	}
	for _, brand := range s.brandKeywords {
		if strings.Contains(host, brand) {
			prob += 0.15
			result.Findings = append(result.Findings, "brand_spoof")
			break
		}
	}
	if s.shorteners[host] {
		prob += 0.15
		result.Findings = append(result.Findings, "shortener")
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range s.keywords {
		if strings.Contains(lower, kw) {
			prob += 0.05
			result.Findings = append(result.Findings, "keyword_"+kw)
		}
	}
	if parsed.Port() != "" && parsed.Port() != "80" && parsed.Port() != "443" {
		prob += 0.1
		result.Findings = append(result.Findings, "nonstandard_port")
	}

	if prob > 1 {
		prob = 1
	}
	result.Probability = prob
	result.Score = prob * 100

	s.storeScore(ctx, trimmed, result)
	return result
}

func (s *URLScanner) cachedScore(ctx context.Context, rawURL string) (URLResult, bool) {
	if s.cache == nil {
		return URLResult{}, false
	}
	var result URLResult
	if err := s.cache.GetJSON(ctx, "url:"+rawURL, &result); err != nil {
		return URLResult{}, false
	}
	return result, true
}

func (s *URLScanner) storeScore(ctx context.Context, rawURL string, result URLResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, "url:"+rawURL, result, 15*time.Minute); err != nil {
		s.logger.Debug().Err(err).Msg("url verdict cache write failed")
	}
}

// registrableDomain reduces a host to its last two labels
func registrableDomain(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
