// Package wire splits MIDI byte streams into raw commands.
package wire

import "github.com/leandrodaf/midibridge/sdk/contracts"

const (
	sysexStart byte = 0xF0
	sysexEnd   byte = 0xF7
)

// Parser turns the bytes of successive packets from one source into raw
// commands. It tracks running status and sysex messages spanning packets, so
// one Parser serves exactly one connection.
type Parser struct {
	running byte // running status, 0 when none
	status  byte // status of the message being collected, 0 when idle
	need    int
	have    int
	data    [2]byte

	sysex bool
	sysN  int
	sysTS uint64
}

// Feed parses data received at timestamp ts.
func (p *Parser) Feed(data []byte, ts uint64) []contracts.RawCommand {
	var out []contracts.RawCommand
	for _, b := range data {
		switch {
		case b >= 0xF8:
			// Realtime bytes may appear anywhere, even inside other messages.
			out = append(out, contracts.RawCommand{Type: b, Timestamp: ts})
		case b < 0x80:
			if cmd, ok := p.dataByte(b, ts); ok {
				out = append(out, cmd)
			}
		default:
			if p.sysex {
				out = append(out, p.endSysex())
				if b == sysexEnd {
					continue
				}
			}
			if cmd, ok := p.statusByte(b, ts); ok {
				out = append(out, cmd)
			}
		}
	}
	return out
}

func (p *Parser) dataByte(b byte, ts uint64) (contracts.RawCommand, bool) {
	if p.sysex {
		if p.sysN < len(p.data) {
			p.data[p.sysN] = b
		}
		p.sysN++
		return contracts.RawCommand{}, false
	}
	if p.status == 0 {
		if p.running == 0 {
			return contracts.RawCommand{}, false
		}
		p.begin(p.running)
	}
	p.data[p.have] = b
	p.have++
	if p.have < p.need {
		return contracts.RawCommand{}, false
	}
	return p.complete(ts), true
}

func (p *Parser) statusByte(b byte, ts uint64) (contracts.RawCommand, bool) {
	p.status = 0
	switch {
	case b == sysexStart:
		p.running = 0
		p.sysex = true
		p.sysN = 0
		p.sysTS = ts
		p.data = [2]byte{}
		return contracts.RawCommand{}, false
	case b == sysexEnd:
		return contracts.RawCommand{}, false
	case b < 0xF0:
		p.running = b
	default:
		p.running = 0
	}
	p.begin(b)
	if p.need == 0 {
		return p.complete(ts), true
	}
	return contracts.RawCommand{}, false
}

func (p *Parser) begin(status byte) {
	p.status = status
	p.need = DataLength(status)
	p.have = 0
	p.data = [2]byte{}
}

func (p *Parser) complete(ts uint64) contracts.RawCommand {
	cmd := contracts.RawCommand{
		Type:      TypeOf(p.status),
		Data1:     p.data[0],
		Data2:     p.data[1],
		Timestamp: ts,
	}
	p.status = 0
	return cmd
}

func (p *Parser) endSysex() contracts.RawCommand {
	p.sysex = false
	return contracts.RawCommand{
		Type:      sysexStart,
		Data1:     p.data[0],
		Data2:     p.data[1],
		Timestamp: p.sysTS,
	}
}

// TypeOf returns the command-type tag of a status byte: the high nibble for
// channel messages, the byte itself for system messages.
func TypeOf(status byte) byte {
	if status < 0xF0 {
		return status & 0xF0
	}
	return status
}

// DataLength returns how many data bytes follow status.
func DataLength(status byte) int {
	switch TypeOf(status) {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0, 0xF2:
		return 2
	case 0xC0, 0xD0, 0xF1, 0xF3:
		return 1
	default:
		return 0
	}
}

// FromShort builds a raw command from an already framed short message.
func FromShort(status, data1, data2 byte, ts uint64) contracts.RawCommand {
	cmd := contracts.RawCommand{Type: TypeOf(status), Timestamp: ts}
	switch DataLength(status) {
	case 2:
		cmd.Data1, cmd.Data2 = data1, data2
	case 1:
		cmd.Data1 = data1
	}
	return cmd
}
