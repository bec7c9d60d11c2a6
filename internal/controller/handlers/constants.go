package handlers

// Длительность слота (в минутах)
const (
	SlotMinDuration = 5
	SlotMaxDuration = 24 * 60
)
