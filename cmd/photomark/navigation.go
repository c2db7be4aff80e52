package main

func (m *model) handleCursorMove(key string, speed int) {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= speed
	case "l", "right", "L", "shift+right":
		m.cursorX += speed
	case "k", "up", "K", "shift+up":
		m.cursorY -= speed
	case "j", "down", "J", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 4
	default:
		return 1
	}
}

// ensureCursorInBounds keeps the cursor on the photo.
func (m *model) ensureCursorInBounds() {
	v := m.viewport()
	m.cursorX = max(0, min(m.cursorX, v.cols-1))
	m.cursorY = max(0, min(m.cursorY, v.rows-1))
}
