package events

// WebSocket event types pushed to dashboard clients. The payload is
// kept deliberately small: clients re-fetch the report endpoints on
// receipt rather than trusting a pushed copy of the data.
const (
	TypeReportLoaded  = "report_loaded"
	TypeReportCleared = "report_cleared"
)

// Message is the envelope for every event sent over the socket.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ReportLoadedPayload accompanies a TypeReportLoaded message.
type ReportLoadedPayload struct {
	Filename    string `json:"filename"`
	RecordCount int    `json:"record_count"`
	DroppedRows int    `json:"dropped_rows"`
}
