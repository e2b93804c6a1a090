package model

// Stats is the dashboard summary returned by /stats
type Stats struct {
	TotalRequests int       `json:"total_requests"`
	TotalLogs     int       `json:"total_logs"`
	TotalErrors   int       `json:"total_errors"`
	ErrorRate     float64   `json:"error_rate"`
	TopIPs        []IPCount `json:"top_ips,omitempty"`
}

// IPCount is a request count per client address
type IPCount struct {
	IP    string `json:"ip"`
	Count int    `json:"count"`
}

// Health is the /health response
type Health struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres"`
}

// LiveMetrics is the rolling-window summary returned by /live-metrics
type LiveMetrics struct {
	TotalOperations int     `json:"total_operations"`
	ErrorCount      int     `json:"error_count"`
	ErrorRate       float64 `json:"error_rate"`
	AvgDuration     float64 `json:"avg_duration"`
	TimeRangeHours  float64 `json:"time_range_hours"`
}

// RateBand classifies an error rate for colouring
type RateBand int

const (
	BandOK RateBand = iota
	BandWarning
	BandDanger
)

// Error-rate thresholds in percent
const (
	WarningRateThreshold = 10.0
	DangerRateThreshold  = 20.0
)

// BandForRate returns danger above 20%, warning above 10%, ok otherwise
func BandForRate(rate float64) RateBand {
	switch {
	case rate > DangerRateThreshold:
		return BandDanger
	case rate > WarningRateThreshold:
		return BandWarning
	default:
		return BandOK
	}
}
