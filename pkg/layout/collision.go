package layout

// DetectCollisions returns the ids of panels in others whose bounds overlap
// panel with non-zero area. The panel itself (same id) is skipped.
// Touching edges are not a collision.
func DetectCollisions(panel Panel, others []Panel) []string {
	return DetectRectCollisions(panel.ID, panel.Rect(), others)
}

// DetectRectCollisions is DetectCollisions for a proposed rectangle that has
// not been written to the panel yet.
func DetectRectCollisions(id string, r Rect, others []Panel) []string {
	var hits []string
	for _, o := range others {
		if o.ID == id {
			continue
		}
		if r.Intersects(o.Rect()) {
			hits = append(hits, o.ID)
		}
	}
	return hits
}

// Overlaps reports whether a and b overlap with non-zero area.
func Overlaps(a, b Panel) bool {
	return a.Rect().Intersects(b.Rect())
}
