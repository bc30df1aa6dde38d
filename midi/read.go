package midi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
)

type chunk struct {
	id   [4]byte
	data []byte
}

var (
	errNotMIDI       = errors.New("not a MIDI file")
	errInvalidChunks = errors.New("invalid MIDI file chunks")
	errInvalidEvent  = errors.New("invalid event")
)

func splitChunks(data []byte) ([]chunk, error) {
	var r []chunk
	for len(data) > 0 {
		if len(data) < 8 {
			return nil, errInvalidChunks
		}
		var c chunk
		copy(c.id[:], data)
		n := binary.BigEndian.Uint32(data[4:])
		data = data[8:]
		if int(n) > len(data) {
			return nil, errInvalidChunks
		}
		c.data = data[:n]
		data = data[n:]
		r = append(r, c)
	}
	return r, nil
}

// A Head is the contents of the MThd chunk.
type Head struct {
	Format    uint16
	NumTracks uint16
	Division  uint16
}

func parseHead(data []byte) (h Head, err error) {
	if len(data) < 6 {
		return h, errors.New("MThd too short")
	}
	return Head{
		Format:    binary.BigEndian.Uint16(data),
		NumTracks: binary.BigEndian.Uint16(data[2:]),
		Division:  binary.BigEndian.Uint16(data[4:]),
	}, nil
}

type event struct {
	time  uint32
	ctl   uint8
	data  [2]uint8
	vdata []byte
}

type track struct {
	time   uint32
	status byte
	data   []byte
}

const (
	noteOff       = 8
	noteOn        = 9
	polyTouch     = 10
	controller    = 11
	programChange = 12
	channelTouch  = 13
	pitchBend     = 14
)

func (t *track) readVar() (q uint32, ok bool) {
	for {
		if len(t.data) == 0 {
			return 0, false
		}
		c := t.data[0]
		t.data = t.data[1:]
		if q > ^uint32(0)>>7 {
			return 0, false
		}
		q = (q << 7) | (uint32(c) & 0x7f)
		if c&0x80 == 0 {
			return q, true
		}
		// Leading zero bytes are non-canonical.
		if q == 0 {
			return 0, false
		}
	}
}

func (t *track) next() (e event, ok bool) {
	delta, ok := t.readVar()
	if !ok {
		return e, false
	}
	if len(t.data) == 0 {
		return e, false
	}
	if delta > ^t.time {
		return e, false
	}
	e.time = t.time + delta
	t.time = e.time
	ctl := t.data[0]
	if ctl&0x80 == 0 {
		ctl = t.status
		if ctl == 0 {
			return e, false
		}
	} else {
		t.data = t.data[1:]
	}
	var elen int
	switch ctl >> 4 {
	case noteOff, noteOn, polyTouch, controller, pitchBend:
		elen = 2
	case programChange, channelTouch:
		elen = 1
	case 15:
		if ctl != 0xff {
			// System exclusive: length-prefixed payload.
			n, ok := t.readVar()
			if !ok || int(n) > len(t.data) {
				return e, false
			}
			t.status = 0
			t.data = t.data[n:]
			e.ctl = ctl
			return e, true
		}
		if len(t.data) < 1 {
			return e, false
		}
		mt := t.data[0]
		t.data = t.data[1:]
		n, ok := t.readVar()
		if !ok {
			return e, false
		}
		if int(n) > len(t.data) {
			return e, false
		}
		t.status = 0
		e.ctl = 0xff
		e.data = [2]byte{mt, 0}
		e.vdata = t.data[:n]
		t.data = t.data[n:]
		return e, true
	default:
		panic("invalid status")
	}
	if len(t.data) < elen {
		return e, false
	}
	var d1, d2 byte
	switch elen {
	case 1:
		d1 = t.data[0]
	case 2:
		d1 = t.data[0]
		d2 = t.data[1]
	default:
		panic("bad length: " + strconv.Itoa(elen))
	}
	t.data = t.data[elen:]
	t.status = ctl
	e.ctl = ctl
	e.data = [2]byte{d1, d2}
	return e, true
}

// A File is the note content of a Standard MIDI File.
type File struct {
	Head   Head
	Tracks [][]Note
}

// Parse reads a Standard MIDI File and returns the notes of each track.
func Parse(data []byte) (*File, error) {
	if len(data) < 8 || string(data[0:4]) != "MThd" {
		return nil, errNotMIDI
	}
	cks, err := splitChunks(data)
	if err != nil {
		return nil, err
	}
	h, err := parseHead(cks[0].data)
	if err != nil {
		return nil, err
	}
	f := File{Head: h}
	for i, ck := range cks[1:] {
		if string(ck.id[:]) != "MTrk" {
			return nil, fmt.Errorf("unknown chunk type: %q", ck.id[:])
		}
		tr := track{data: ck.data}
		ns, err := tr.parseNotes()
		if err != nil {
			return nil, fmt.Errorf("track %d: %v", i, err)
		}
		f.Tracks = append(f.Tracks, ns)
	}
	return &f, nil
}
