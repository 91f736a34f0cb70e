package animation

import "github.com/preston-bernstein/gamecast-service/internal/field"

// Card is the render surface for one game. The scheduler calls it while holding its own
// lock, so implementations must not call back into the Scheduler.
type Card interface {
	// Render shows an effect until Remove is called with the same task id.
	Render(Effect)
	Remove(taskID string)
	// Marker returns the ball marker for path animations, or nil if the card has none.
	Marker() field.Marker
}
