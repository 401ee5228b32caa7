package domain

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string            `json:"status"` // healthy, degraded, unhealthy
	Services []ComponentHealth `json:"services"`
}

// ComponentHealth represents the health of one part of the service.
type ComponentHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	LastChecked string `json:"lastChecked"`
}
