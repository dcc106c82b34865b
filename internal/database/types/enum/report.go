package enum

// ReportStatus represents the validation state of a report.
type ReportStatus string

const (
	// ReportStatusPending means the report has not yet gathered a decisive vote set.
	ReportStatusPending ReportStatus = "pending"
	// ReportStatusVerified means the crowd confirmed the report. Terminal.
	ReportStatusVerified ReportStatus = "verified"
	// ReportStatusRejected means the crowd dismissed the report. Terminal.
	ReportStatusRejected ReportStatus = "rejected"
)

// IsTerminal reports whether no further automatic status transition occurs.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusVerified || s == ReportStatusRejected
}

// String returns the status as a string.
func (s ReportStatus) String() string {
	return string(s)
}

// ReportKind represents the category of a reported incident.
type ReportKind string

const (
	ReportKindHazard         ReportKind = "hazard"
	ReportKindCrime          ReportKind = "crime"
	ReportKindAccident       ReportKind = "accident"
	ReportKindInfrastructure ReportKind = "infrastructure"
	ReportKindEnvironment    ReportKind = "environment"
	ReportKindOther          ReportKind = "other"
)

// IsValid reports whether the kind is part of the closed set.
func (k ReportKind) IsValid() bool {
	switch k {
	case ReportKindHazard, ReportKindCrime, ReportKindAccident,
		ReportKindInfrastructure, ReportKindEnvironment, ReportKindOther:
		return true
	default:
		return false
	}
}

// String returns the kind as a string.
func (k ReportKind) String() string {
	return string(k)
}
