package layout

// CalculateResizeDelta applies a pointer delta to the start geometry for the
// given handle. East/west handles change only the width, north/south only the
// height, and corner handles both. For north and west handles the position
// moves by the negative of the size change so the opposite edge stays put.
//
// The returned size is not clamped; callers apply constraints afterwards and
// use [AnchorPosition] to recompute the compensated position.
func CalculateResizeDelta(dir Direction, delta Point, startPos Point, startSize Size) Rect {
	r := NewRect(startPos, startSize)
	if dir.HasEast() {
		r.Width = startSize.Width + delta.X
	}
	if dir.HasWest() {
		r.Width = startSize.Width - delta.X
		r.X = startPos.X + delta.X
	}
	if dir.HasSouth() {
		r.Height = startSize.Height + delta.Y
	}
	if dir.HasNorth() {
		r.Height = startSize.Height - delta.Y
		r.Y = startPos.Y + delta.Y
	}
	return r
}

// AnchorPosition returns the position for a panel resized from startPos and
// startSize to size using handle dir, such that the edges opposite the handle
// do not move.
func AnchorPosition(dir Direction, startPos Point, startSize, size Size) Point {
	pos := startPos
	if dir.HasWest() {
		pos.X = startPos.X + startSize.Width - size.Width
	}
	if dir.HasNorth() {
		pos.Y = startPos.Y + startSize.Height - size.Height
	}
	return pos
}

// ApplyAspectRatio forces size to ratio (width/height). Vertical handles drive
// the width from the height; all other handles drive the height from the width.
func ApplyAspectRatio(size Size, ratio float64, dir Direction) Size {
	if ratio <= 0 {
		return size
	}
	if dir == North || dir == South {
		return Size{Width: size.Height * ratio, Height: size.Height}
	}
	return Size{Width: size.Width, Height: size.Width / ratio}
}
