package hooks

// BeforeMessageSendPayload is written to the stdin of external
// before_message_send hooks
type BeforeMessageSendPayload struct {
	Event   HookType `json:"event"`
	CWD     string   `json:"cwd"`
	Message Message  `json:"message"`
}

// BeforeMessageSendResult is read from the stdout of external
// before_message_send hooks
type BeforeMessageSendResult struct {
	Segments []Segment `json:"segments,omitempty"`
}
