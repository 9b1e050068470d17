package domain

// ============================================================
// Health API responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
	Error       string `json:"error,omitempty"`
}

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UsageStats is a read-only view of the service counters.
type UsageStats struct {
	EMICalculations int64  `json:"emiCalculations"`
	EMIRejected     int64  `json:"emiRejected"`
	ProductQueries  int64  `json:"productQueries"`
	Registrations   int64  `json:"registrations"`
	Logins          int64  `json:"logins"`
	LoginFailures   int64  `json:"loginFailures"`
	StoreErrors     int64  `json:"storeErrors"`
	Period          string `json:"period"`
}
