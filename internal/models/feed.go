package models

// FeedThreat is the REST projection of a Threat served by /api/threats and
// consumed by the feed dashboard. Severity is Title-case and category is a
// display label.
type FeedThreat struct {
	ID              string `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	Description     string `json:"description" yaml:"description"`
	Severity        string `json:"severity" yaml:"severity"`
	PriorityScore   int    `json:"priorityScore" yaml:"priorityScore"`
	Category        string `json:"category" yaml:"category"`
	Date            string `json:"date" yaml:"date"`
	Status          string `json:"status" yaml:"status"`
	AffectedSystems int    `json:"affectedSystems" yaml:"affectedSystems"`
	ThreatActor     string `json:"threatActor" yaml:"threatActor"`
	Mitigation      string `json:"mitigation" yaml:"mitigation"`
}

// Stats are the headline aggregates served by /api/threats/stats.
type Stats struct {
	TotalThreats    int    `json:"totalThreats" yaml:"totalThreats"`
	CriticalThreats int    `json:"criticalThreats" yaml:"criticalThreats"`
	ActiveIncidents int    `json:"activeIncidents" yaml:"activeIncidents"`
	AvgResponseTime string `json:"avgResponseTime" yaml:"avgResponseTime"`
}
