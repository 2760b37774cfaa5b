package entity

const (
	StatusActive      = "active"
	StatusQuarantined = "quarantined"
)

// RecordStatus is the read-only view of a URLRecord served by the status API.
type RecordStatus struct {
	URL            string
	CurrentStatus  string // "active" or "quarantined"
	FirstSeen      string
	LastSeen       string
	LastCrawled    *string
	FailedAttempts int
	Metadata       Metadata
	FailureReason  string // reason of the last failure, when known
}

// NewRecordStatus derives the status view of a record.
func NewRecordStatus(url string, rec URLRecord) *RecordStatus {
	status := StatusActive
	if rec.FailedAttempts >= MaxFailedAttempts {
		status = StatusQuarantined
	}
	return &RecordStatus{
		URL:            url,
		CurrentStatus:  status,
		FirstSeen:      rec.FirstSeen,
		LastSeen:       rec.LastSeen,
		LastCrawled:    rec.LastCrawled,
		FailedAttempts: rec.FailedAttempts,
		Metadata:       rec.Metadata,
	}
}
