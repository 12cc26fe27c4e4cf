package session

// MessageReceive is emitted for a mobile-originated message (a DELIVER
// whose RegisteredDelivery is 0).
type MessageReceive struct {
	Content     string
	Source      string
	MessageID   int64
	Destination string
}

// MessageReport is emitted for a gateway delivery report (a DELIVER whose
// RegisteredDelivery is 1).
type MessageReport struct {
	MessageID   int64
	StatusText  string
	Destination string
}
