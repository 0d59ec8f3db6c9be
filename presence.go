package docbind

// Presence is the bit flag collected by WithPresence during reads.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Fragment appeared in the document.
	PresenceWasNull                             // Fragment value was null.
	PresenceDefaultApplied                      // Default value was applied.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Has reports whether path carries flag.
func (pm PresenceMap) Has(path string, flag Presence) bool {
	return pm[path]&flag != 0
}

func (pm PresenceMap) mark(path string, flag Presence) {
	if pm == nil {
		return
	}
	pm[pathOrRoot(path)] |= flag
}
