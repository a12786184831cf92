package models

// SessionResult represents the outcome of minting a session in the
// headless browser. Sessions themselves are plain device identifier
// strings; their validity state lives in the sessions table.
type SessionResult struct {
	DeviceIdentifier string
	Error            error
}
