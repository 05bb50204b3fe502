package admin

import (
	"fmt"
	"io"
	"strings"
)

// RenderDashboard writes a text rendering of the dashboard snapshot.
func RenderDashboard(w io.Writer, snap DashboardSnapshot) {
	fmt.Fprintf(w, "=== Admin Dashboard (stream: %s) ===\n", snap.StreamState)
	if snap.AdminID != "" {
		fmt.Fprintf(w, "session: %s\n", snap.AdminID)
	}
	if snap.Highlighted > 0 {
		fmt.Fprintf(w, "broadcast: question %d sent to participants\n", snap.Highlighted)
	}
	fmt.Fprintf(w, "participants: %d total, %d online, avg score %.1f\n",
		snap.Total, snap.Online, snap.AverageScore)

	for i, p := range snap.Players {
		marker := "offline"
		if p.Active {
			marker = "online"
		}
		name := p.Name
		if name == "" {
			name = p.ID
		}
		fmt.Fprintf(w, "  #%d %-20s %3d  (%s)\n", i+1, name, p.Score, marker)
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
}
