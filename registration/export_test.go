package registration

// SetWorkIDSource replaces the work id generator, so tests can force
// collisions.
func (e *Engine) SetWorkIDSource(newWorkID func() string) {
	e.newWorkID = newWorkID
}
