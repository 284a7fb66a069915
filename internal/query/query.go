// Package query answers roster requests from the host.
package query

import (
	"fmt"

	"github.com/leandrodaf/midibridge/internal/devicefilter"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// Lister reads the current device list.
type Lister interface {
	Devices() ([]contracts.Device, error)
}

// Service builds rosters on demand, independent of held connections.
type Service struct {
	lister Lister
}

// New returns a Service reading from lister.
func New(lister Lister) *Service {
	return &Service{lister: lister}
}

// ListDevices recomputes the roster from the current device list. When the
// list cannot be read the error wraps contracts.ErrEnumeration and no roster
// is returned.
func (s *Service) ListDevices() (contracts.Roster, error) {
	devices, err := s.lister.Devices()
	if err != nil {
		return contracts.Roster{}, fmt.Errorf("%w: %v", contracts.ErrEnumeration, err)
	}
	return devicefilter.BuildRoster(devices), nil
}
