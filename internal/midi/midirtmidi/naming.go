package midirtmidi

import "strings"

// virtualPatterns name system and loopback ports.
var virtualPatterns = []string{"Midi Through", "Through Port", "Dummy", "RtMidi"}

// IsVirtualPort reports whether an rtmidi port name denotes a software port.
func IsVirtualPort(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range virtualPatterns {
		if strings.Contains(lower, strings.ToLower(pat)) {
			return true
		}
	}
	return false
}

// ManufacturerOf derives a manufacturer name from an ALSA style port name
// such as "Launchkey MK3:Launchkey MK3 MIDI 1 20:0".
func ManufacturerOf(name string) string {
	if i := strings.IndexByte(name, ':'); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
