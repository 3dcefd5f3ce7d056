package model

import "time"

// RecentDropRecord is the UI-facing projection of one successfully
// dispatched item. The submission orchestrator appends records only after
// the transport reports success.
type RecentDropRecord struct {
	ID            string
	PlayerName    string
	ItemName      string
	Quantity      int
	Value         int
	SourceName    string
	Kind          DropKind
	ScreenshotURL string
	CreatedAt     time.Time
}
