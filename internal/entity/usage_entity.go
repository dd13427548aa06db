package entity

// UsageResource names a metered resource. Counters are keyed by user,
// resource and period start.
type UsageResource string

const (
	UsageResourceAnnotation     UsageResource = "annotation"
	UsageResourceDocumentUpload UsageResource = "document_upload"
	UsageResourceAiQuery        UsageResource = "ai_query"
)
