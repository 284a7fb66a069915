// Package devicefilter decides which devices are exposed and builds the roster.
package devicefilter

import (
	"strconv"

	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// IsValid reports whether d should be listed and connected: a physical device
// with at least one entity and a manufacturer name.
func IsValid(d contracts.Device) bool {
	return !d.Virtual && len(d.Entities) > 0 && d.Manufacturer != ""
}

// Valid returns the valid devices of list, in list order.
func Valid(list []contracts.Device) []contracts.Device {
	out := make([]contracts.Device, 0, len(list))
	for _, d := range list {
		if IsValid(d) {
			out = append(out, d)
		}
	}
	return out
}

// BuildRoster indexes the valid devices of list by their position among valid devices.
func BuildRoster(list []contracts.Device) contracts.Roster {
	return RosterOf(Valid(list))
}

// RosterOf indexes an already filtered list.
func RosterOf(valid []contracts.Device) contracts.Roster {
	r := contracts.Roster{Devices: make(map[string]string, len(valid))}
	for i, d := range valid {
		r.Devices[strconv.Itoa(i)] = d.Manufacturer
	}
	return r
}
