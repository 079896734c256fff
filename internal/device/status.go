package device

// Status is the connection state of a device.
type Status string

// Connection states.
const (
	StatusDisconnected  Status = "disconnected"
	StatusConnecting    Status = "connecting"
	StatusConnected     Status = "connected"
	StatusDisconnecting Status = "disconnecting"
	StatusError         Status = "error"
)

// AllStatuses lists every connection state.
func AllStatuses() []Status {
	return []Status{
		StatusDisconnected,
		StatusConnecting,
		StatusConnected,
		StatusDisconnecting,
		StatusError,
	}
}

// IsAnyOf reports whether s equals one of the given states.
func (s Status) IsAnyOf(states ...Status) bool {
	for _, other := range states {
		if s == other {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known state.
func (s Status) IsValid() bool {
	return s.IsAnyOf(AllStatuses()...)
}

// String returns the state name.
func (s Status) String() string {
	return string(s)
}
