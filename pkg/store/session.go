package store

import "time"

// Session is the per-connection state kept in memory between commands.
type Session struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`

	// LastText is the most recent text accepted by analyze; the novelty gate compares against it.
	LastText *string `json:"last_text,omitempty"`
	// LastLanes identifies the lane set LastText was analyzed with.
	LastLanes string `json:"last_lanes,omitempty"`
}
