package domain

// Attribute keys shared by structured logs.
const (
	// KeyPath is the log attribute carrying a Path.
	KeyPath = "path"

	// KeyListener is the log attribute carrying a listener index.
	KeyListener = "listener"
)
