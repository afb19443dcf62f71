package model

import "strconv"

// Status is the processing outcome of a single document.
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)

// YesNo is the two-valued enum used by derived indicators in the report
// (regularization and photo presence). Values are stable and exported as-is.
type YesNo string

const (
	Yes YesNo = "SIM"
	No  YesNo = "NÃO"
)

// YesNoOf maps a boolean onto the report enum.
func YesNoOf(b bool) YesNo {
	if b {
		return Yes
	}
	return No
}

// Document is one input of a batch: the source file and its identifier.
// FileID is what appears in reports; Path is what gets read.
type Document struct {
	FileID string `json:"file_id"`
	Path   string `json:"path"`
}

// Record is the flat, typed result of extracting one inspection report.
// It is populated once by the record builder and only read afterwards.
type Record struct {
	FileID string `json:"file_id" yaml:"file_id"`
	Status Status `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`

	ReportNumber        string `json:"report_number" yaml:"report_number"`
	StatusLabel         string `json:"status_label" yaml:"status_label"`
	ProtocolNumber      string `json:"protocol_number" yaml:"protocol_number"`
	InspectorRaw        string `json:"inspector_raw" yaml:"inspector_raw"`
	InspectorFullName   string `json:"inspector_full_name" yaml:"inspector_full_name"`
	ReportDate          string `json:"report_date" yaml:"report_date"`
	TriggeringFactText  string `json:"triggering_fact_text" yaml:"triggering_fact_text"`
	PrimaryReportNumber string `json:"primary_report_number" yaml:"primary_report_number"`

	ActionCount       int `json:"action_count" yaml:"action_count"`
	HasOfficialNotice int `json:"has_official_notice" yaml:"has_official_notice"`
	HasNoticeReply    int `json:"has_notice_reply" yaml:"has_notice_reply"`

	// Dates are DD/MM/YYYY or empty.
	ARTDate            string `json:"art_date" yaml:"art_date"`
	PreviousReportDate string `json:"previous_report_date" yaml:"previous_report_date"`
	Regularized        YesNo  `json:"regularized" yaml:"regularized"`

	ExtraNotes string `json:"extra_notes" yaml:"extra_notes"`

	PhotoCount  int      `json:"photo_count" yaml:"photo_count"`
	PhotoStatus YesNo    `json:"photo_status" yaml:"photo_status"`
	PhotoFiles  []string `json:"photo_files,omitempty" yaml:"photo_files,omitempty"`
}

// NewRecord returns an OK record with every derived field at its default.
func NewRecord(fileID string) Record {
	return Record{
		FileID:      fileID,
		Status:      StatusOK,
		Regularized: No,
		PhotoStatus: No,
	}
}

// ErrorRecord returns the safe-default record used for a failed document.
func ErrorRecord(fileID, reason string) Record {
	r := NewRecord(fileID)
	r.Status = StatusError
	r.Error = reason
	return r
}

// OK reports whether the record participates in valid-record aggregates and scoring.
func (r Record) OK() bool {
	return r.Status == StatusOK
}

// SetPhotos sets the photo count and keeps PhotoStatus consistent with it.
func (r *Record) SetPhotos(count int, files []string) {
	if count < 0 {
		count = 0
	}
	r.PhotoCount = count
	r.PhotoFiles = files
	r.PhotoStatus = YesNoOf(count > 0)
}

// PhotoSummary is the human-readable photo column of the exports.
func (r Record) PhotoSummary() string {
	switch {
	case !r.OK():
		return "Erro no processamento"
	case r.PhotoCount > 0:
		return strconv.Itoa(r.PhotoCount) + " foto(s) extraída(s)"
	default:
		return "Nenhuma foto extraída"
	}
}
