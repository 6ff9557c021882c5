package services

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"signalguard/internal/config"
	"signalguard/internal/domain/models"
	"signalguard/pkg/logger"
)

// CampaignGraph correlates signals through shared entities over the
// lifetime of one investigative session. It is an explicit session
// object: construct it, inject it where needed, call Reset to start a
// new session. The graph only grows; it has no TTL or eviction, so
// callers own bounding its lifetime. Single writer, concurrent readers.
type CampaignGraph struct {
	mu          sync.RWMutex
	signals     []*signalNode
	entities    map[string]*entityNode
	entityOrder []string
	sharedEdges []sharedEdge
	counter     int
	textDomain  *regexp.Regexp
	logger      *logger.Logger
}

type signalNode struct {
	id         string
	signalType string
	timestamp  string
	entityIDs  []string
}

type entityNode struct {
	id        string
	entType   models.EntityType
	value     string
	signalIDs []string
}

// sharedEdge links two signals through the entity that connected them
type sharedEdge struct {
	a, b     string
	entityID string
}

// NewCampaignGraph creates an empty session graph
func NewCampaignGraph(cfg config.ExtractionConfig, log *logger.Logger) *CampaignGraph {
	tlds := cfg.TextTLDs
	if len(tlds) == 0 {
		tlds = config.Default().Extraction.TextTLDs
	}
	pattern := `\b(?:[a-z0-9\-]+\.)+(?:` + strings.Join(tlds, "|") + `)\b`

	return &CampaignGraph{
		entities:   make(map[string]*entityNode),
		textDomain: regexp.MustCompile(pattern),
		logger:     log.WithComponent("campaign-graph"),
	}
}

// AddSignal registers one signal, extracts its entities and eagerly
// links it to every earlier signal sharing an entity. Returns the
// assigned signal ID.
func (g *CampaignGraph) AddSignal(signalType string, data map[string]string, timestamp string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++
	id := fmt.Sprintf("%s_%d", signalType, g.counter)

	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	node := &signalNode{
		id:         id,
		signalType: signalType,
		timestamp:  timestamp,
	}

	for _, ent := range g.extractEntities(data) {
		entID := string(ent.Type) + ":" + ent.Value

		existing, ok := g.entities[entID]
		if !ok {
			existing = &entityNode{id: entID, entType: ent.Type, value: ent.Value}
			g.entities[entID] = existing
			g.entityOrder = append(g.entityOrder, entID)
		}

		node.entityIDs = append(node.entityIDs, entID)

		for _, otherID := range existing.signalIDs {
			g.sharedEdges = append(g.sharedEdges, sharedEdge{a: otherID, b: id, entityID: entID})
		}
		existing.signalIDs = append(existing.signalIDs, id)
	}

	g.signals = append(g.signals, node)

	g.logger.WithSignalID(id).Debug().
		Int("entities", len(node.entityIDs)).
		Msg("signal added to campaign graph")

	return id
}

// Correlate computes the current campaign report, fresh every call
func (g *CampaignGraph) Correlate() models.CampaignReport {
	g.mu.RLock()
	defer g.mu.RUnlock()

	signalCount := len(g.signals)

	report := models.CampaignReport{
		SignalCount: signalCount,
		EntityCount: len(g.entities),
		EdgeCount:   g.hasEntityEdges() + len(g.sharedEdges),
		Clusters:    []models.CampaignCluster{},
		Timeline:    []models.SignalSummary{},
	}

	if signalCount == 0 {
		report.SharedEntities = []string{}
		report.Summary = "No signals ingested"
		return report
	}

	components := g.connectedComponents()
	largest := 0
	for _, comp := range components {
		if len(comp) > largest {
			largest = len(comp)
		}
		cluster := models.CampaignCluster{SignalIDs: comp, Size: len(comp)}
		seen := make(map[string]bool)
		for _, sigID := range comp {
			for _, entID := range g.signalByID(sigID).entityIDs {
				if !seen[entID] {
					seen[entID] = true
					cluster.EntityIDs = append(cluster.EntityIDs, entID)
				}
			}
		}
		report.Clusters = append(report.Clusters, cluster)
	}

	report.CoordinatedCampaign = signalCount > 1 && largest == signalCount
	report.CorrelationStrength = round2(float64(largest) / float64(signalCount))

	for _, sig := range g.signals {
		report.Timeline = append(report.Timeline, models.SignalSummary{
			ID:        sig.id,
			Type:      sig.signalType,
			Timestamp: sig.timestamp,
		})
	}
	sort.SliceStable(report.Timeline, func(i, j int) bool {
		return report.Timeline[i].Timestamp < report.Timeline[j].Timestamp
	})

	shared := []string{}
	for _, entID := range g.entityOrder {
		if ent := g.entities[entID]; len(ent.signalIDs) > 1 {
			shared = append(shared, ent.value)
		}
	}
	report.SharedEntities = shared

	if report.CoordinatedCampaign {
		report.Summary = fmt.Sprintf(
			"Coordinated campaign: %d signals linked through shared entities (%s)",
			signalCount, strings.Join(shared, ", "))
	} else {
		report.Summary = fmt.Sprintf(
			"No coordinated campaign: %d signal(s) across %d cluster(s)",
			signalCount, len(components))
	}

	return report
}

// Reset discards all session state. The next AddSignal starts fresh.
func (g *CampaignGraph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.signals = nil
	g.entities = make(map[string]*entityNode)
	g.entityOrder = nil
	g.sharedEdges = nil
	g.counter = 0

	g.logger.Info().Msg("campaign graph reset")
}

func (g *CampaignGraph) hasEntityEdges() int {
	n := 0
	for _, sig := range g.signals {
		n += len(sig.entityIDs)
	}
	return n
}

func (g *CampaignGraph) signalByID(id string) *signalNode {
	for _, sig := range g.signals {
		if sig.id == id {
			return sig
		}
	}
	return nil
}

// connectedComponents walks the signal-induced subgraph: two signals are
// adjacent iff some entity links them
func (g *CampaignGraph) connectedComponents() [][]string {
	adjacency := make(map[string][]string, len(g.signals))
	for _, sig := range g.signals {
		adjacency[sig.id] = nil
	}
	for _, edge := range g.sharedEdges {
		adjacency[edge.a] = append(adjacency[edge.a], edge.b)
		adjacency[edge.b] = append(adjacency[edge.b], edge.a)
	}

	visited := make(map[string]bool, len(g.signals))
	var components [][]string

	for _, sig := range g.signals {
		if visited[sig.id] {
			continue
		}
		var comp []string
		queue := []string{sig.id}
		visited[sig.id] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, next := range adjacency[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		components = append(components, comp)
	}

	return components
}

// extractEntities applies the fixed extraction policy to a signal
// payload, deduplicated and in first-seen order
func (g *CampaignGraph) extractEntities(data map[string]string) []models.Entity {
	var out []models.Entity
	seen := make(map[string]bool)

	add := func(entType models.EntityType, value string) {
		if value == "" {
			return
		}
		id := string(entType) + ":" + value
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, models.Entity{ID: id, Type: entType, Value: value})
	}

	// Deterministic field order so dedupe is stable
	for _, field := range []string{"domain", "url", "sender", "email", "hash", "md5", "sha256", "caller_id", "phone", "ip", "ip_address", "text", "email_text"} {
		value, ok := data[field]
		if !ok || value == "" {
			continue
		}

		switch field {
		case "domain":
			add(models.EntityDomain, strings.ToLower(strings.TrimSpace(value)))
		case "url":
			if host := hostFromURL(value); host != "" {
				add(models.EntityDomain, host)
			}
		case "sender", "email":
			addr := strings.ToLower(strings.TrimSpace(value))
			if at := strings.LastIndex(addr, "@"); at >= 0 {
				add(models.EntitySender, addr)
				if domain := addr[at+1:]; domain != "" {
					add(models.EntityDomain, domain)
				}
			}
		case "hash", "md5", "sha256":
			add(models.EntityFileHash, strings.ToLower(strings.TrimSpace(value)))
		case "caller_id", "phone":
			add(models.EntityCallerID, strings.TrimSpace(value))
		case "ip", "ip_address":
			add(models.EntityIP, strings.TrimSpace(value))
		case "text", "email_text":
			// A domain merely mentioned in prose is weaker evidence than a
			// real URL or sender domain, so it gets its own namespace and
			// never links to those.
			for _, match := range g.textDomain.FindAllString(strings.ToLower(value), -1) {
				add(models.EntityDomainInText, match)
			}
		}
	}

	return out
}

func hostFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
