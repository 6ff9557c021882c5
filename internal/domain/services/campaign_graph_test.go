package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalguard/internal/config"
	"signalguard/pkg/logger"
)

func newTestGraph() *CampaignGraph {
	return NewCampaignGraph(config.Default().Extraction, logger.NewDefault())
}

func TestCorrelateEmptyGraph(t *testing.T) {
	g := newTestGraph()

	report := g.Correlate()

	assert.Equal(t, 0, report.SignalCount)
	assert.False(t, report.CoordinatedCampaign)
	assert.Empty(t, report.Timeline)
	assert.Empty(t, report.SharedEntities)
}

func TestSingleSignalIsNotCoordinated(t *testing.T) {
	g := newTestGraph()

	id := g.AddSignal("email", map[string]string{"sender": "attacker@evil.xyz"}, "2026-01-01T10:00:00Z")
	assert.Equal(t, "email_1", id)

	report := g.Correlate()
	assert.Equal(t, 1, report.SignalCount)
	assert.False(t, report.CoordinatedCampaign)
	assert.Equal(t, 1.0, report.CorrelationStrength)
}

func TestTwoSignalsSharingDomainAreCoordinated(t *testing.T) {
	g := newTestGraph()

	g.AddSignal("email", map[string]string{"sender": "x@evil.tld"}, "2026-01-01T10:00:00Z")
	g.AddSignal("url", map[string]string{"url": "http://evil.tld/path"}, "2026-01-01T11:00:00Z")

	report := g.Correlate()
	assert.True(t, report.CoordinatedCampaign)
	assert.Equal(t, 1.0, report.CorrelationStrength)
	assert.Contains(t, report.SharedEntities, "evil.tld")
	assert.Contains(t, report.Summary, "Coordinated")
}

func TestUnrelatedSignalsStayInSeparateClusters(t *testing.T) {
	g := newTestGraph()

	g.AddSignal("email", map[string]string{"sender": "a@alpha.com"}, "")
	g.AddSignal("email", map[string]string{"sender": "b@bravo.com"}, "")

	report := g.Correlate()
	assert.False(t, report.CoordinatedCampaign)
	assert.Equal(t, 0.5, report.CorrelationStrength)
	assert.Len(t, report.Clusters, 2)
	assert.Empty(t, report.SharedEntities)
}

func TestTimelineSortedByTimestamp(t *testing.T) {
	g := newTestGraph()

	g.AddSignal("email", map[string]string{}, "2026-03-01T00:00:00Z")
	g.AddSignal("email", map[string]string{}, "2026-01-01T00:00:00Z")
	g.AddSignal("email", map[string]string{}, "2026-02-01T00:00:00Z")

	report := g.Correlate()
	require.Len(t, report.Timeline, 3)
	for i := 1; i < len(report.Timeline); i++ {
		assert.LessOrEqual(t, report.Timeline[i-1].Timestamp, report.Timeline[i].Timestamp)
	}
}

func TestResetClearsState(t *testing.T) {
	g := newTestGraph()

	g.AddSignal("email", map[string]string{"sender": "x@evil.tld"}, "")
	g.AddSignal("url", map[string]string{"url": "http://evil.tld"}, "")

	g.Reset()

	report := g.Correlate()
	assert.Equal(t, 0, report.SignalCount)
	assert.False(t, report.CoordinatedCampaign)

	// IDs restart after reset
	assert.Equal(t, "email_1", g.AddSignal("email", nil, ""))
}

func TestEntityExtractionPolicy(t *testing.T) {
	g := newTestGraph()

	g.AddSignal("combined", map[string]string{
		"sender": "Attacker@Evil.XYZ",
		"url":    "https://phish.example.com/login",
		"hash":   "44D88612FEA8A8F36DE82E1278ABB02F",
		"ip":     "203.0.113.7",
		"text":   "visit fake-bank.xyz for your refund",
	}, "")

	report := g.Correlate()
	// sender, evil.xyz, phish.example.com, hash, ip, fake-bank.xyz
	assert.Equal(t, 6, report.EntityCount)
}

func TestEntitiesDeduplicatedPerSignal(t *testing.T) {
	g := newTestGraph()

	g.AddSignal("combined", map[string]string{
		"text": "evil.tld and evil.tld again",
	}, "")

	report := g.Correlate()
	assert.Equal(t, 1, report.EntityCount)
	// A single signal never shares entities with itself
	assert.Empty(t, report.SharedEntities)
}

func TestTextMentionDoesNotLinkToURLDomain(t *testing.T) {
	g := newTestGraph()

	g.AddSignal("email", map[string]string{"text": "see evil.tld for details"}, "2026-01-01T10:00:00Z")
	g.AddSignal("url", map[string]string{"url": "http://evil.tld/login"}, "2026-01-01T11:00:00Z")

	report := g.Correlate()
	assert.False(t, report.CoordinatedCampaign)
	assert.Len(t, report.Clusters, 2)
	assert.Empty(t, report.SharedEntities)
}

func TestTextMentionsCorrelateWithEachOther(t *testing.T) {
	g := newTestGraph()

	g.AddSignal("email", map[string]string{"text": "wire it via evil.tld now"}, "")
	g.AddSignal("email", map[string]string{"text": "evil.tld is the payment portal"}, "")

	report := g.Correlate()
	assert.True(t, report.CoordinatedCampaign)
	assert.Contains(t, report.SharedEntities, "evil.tld")
}

func TestConcurrentAddSignal(t *testing.T) {
	g := newTestGraph()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			g.AddSignal("email", map[string]string{
				"sender": fmt.Sprintf("user%d@shared.tld", n),
			}, "")
			g.Correlate()
		}(i)
	}
	wg.Wait()

	report := g.Correlate()
	assert.Equal(t, 20, report.SignalCount)
	// Every signal shares the shared.tld domain entity
	assert.True(t, report.CoordinatedCampaign)
	assert.Contains(t, report.SharedEntities, "shared.tld")
}
