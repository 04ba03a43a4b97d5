package types

type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "UP"
	HealthStatusDown     HealthStatus = "DOWN"
	HealthStatusDegraded HealthStatus = "DEGRADED"
)

// HealthComponent is one dependency in the /health payload. LatencyMs is the
// round trip of the last successful probe.
type HealthComponent struct {
	Status    HealthStatus `json:"status"`
	Details   string       `json:"details,omitempty"`
	LatencyMs int64        `json:"latencyMs,omitempty"`
}

type HealthCheck struct {
	Service    string                     `json:"service"`
	Status     HealthStatus               `json:"status"`
	Components map[string]HealthComponent `json:"components"`
	Version    string                     `json:"version"`
	Timestamp  string                     `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
}
