package models

// EntityType classifies an extracted indicator
type EntityType string

const (
	EntityDomain       EntityType = "domain"
	EntityDomainInText EntityType = "domain_in_text"
	EntitySender       EntityType = "sender"
	EntityFileHash     EntityType = "file_hash"
	EntityCallerID     EntityType = "caller_id"
	EntityIP           EntityType = "ip"
)

// Entity is a shared indicator extracted from signal metadata. ID is
// "<type>:<value>" and is stable across signals.
type Entity struct {
	ID    string     `json:"id"`
	Type  EntityType `json:"type"`
	Value string     `json:"value"`
}

// SignalSummary is a signal's appearance in a campaign report
type SignalSummary struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// CampaignCluster is one connected component of the correlation graph
type CampaignCluster struct {
	SignalIDs []string `json:"signal_ids"`
	EntityIDs []string `json:"entity_ids"`
	Size      int      `json:"size"`
}

// CampaignReport summarises the correlation state of a session
type CampaignReport struct {
	SignalCount         int               `json:"signal_count"`
	EntityCount         int               `json:"entity_count"`
	EdgeCount           int               `json:"edge_count"`
	Clusters            []CampaignCluster `json:"clusters"`
	CorrelationStrength float64           `json:"correlation_strength"`
	CoordinatedCampaign bool              `json:"coordinated_campaign"`
	Timeline            []SignalSummary   `json:"timeline"`
	SharedEntities      []string          `json:"shared_entities"`
	Summary             string            `json:"summary"`
}
