package port

import "github.com/dreschagin/netpulse/internal/application/dto"

// NotificationService defines the interface for pushing real-time updates
// to connected clients (Port). Implementation lives in the Infrastructure
// layer (WebSocket Hub).
type NotificationService interface {
	// Broadcast sends a monitor snapshot to all connected clients.
	Broadcast(snapshot *dto.MonitorSnapshotDTO)

	// BroadcastAlert sends an alert to all connected clients.
	BroadcastAlert(alert *dto.AlertDTO)

	// ClientCount returns the number of connected clients.
	ClientCount() int
}
