// Package persist implements the two on-disk formats: a dense binary
// snapshot of the entire event grid (for autosave and fast load/save),
// and a sparse JSON record that only lists active events (for
// human-editable project files).
package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/gruvbok/gruvbok/event"
)

// magic identifies a GRUVBOK binary snapshot: "GRVB".
var magic = [4]byte{0x47, 0x52, 0x56, 0x42}

const formatVersion uint32 = 1

// binarySize is the total byte size of a binary snapshot: the 8-byte
// header plus one 32-bit word per event in the grid.
const binarySize = 8 + event.NumModes*event.NumPatterns*event.NumTracks*event.NumEvents*4

// EncodeBinary serializes song as the dense binary snapshot: an 8-byte
// header (magic + version) followed by every Event's packed word, in
// mode -> pattern -> track -> step order.
func EncodeBinary(song *event.Song) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, binarySize))
	buf.Write(magic[:])
	binary.Write(buf, binary.LittleEndian, formatVersion)

	for mode := 0; mode < event.NumModes; mode++ {
		for pattern := 0; pattern < event.NumPatterns; pattern++ {
			for track := 0; track < event.NumTracks; track++ {
				for step := 0; step < event.NumEvents; step++ {
					word := song.EventAt(mode, pattern, track, step).Packed()
					binary.Write(buf, binary.LittleEndian, word)
				}
			}
		}
	}

	return buf.Bytes()
}

// DecodeBinary parses a dense binary snapshot, rejecting a mismatched
// magic, version, or length.
func DecodeBinary(data []byte) (*event.Song, error) {
	if len(data) != binarySize {
		return nil, fmt.Errorf("persist: expected %d bytes, got %d", binarySize, len(data))
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, fmt.Errorf("persist: bad magic %x", data[:4])
	}

	r := bytes.NewReader(data[4:])
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, fmt.Errorf("persist: unsupported version %d", version)
	}

	song := event.New()
	for mode := 0; mode < event.NumModes; mode++ {
		for pattern := 0; pattern < event.NumPatterns; pattern++ {
			for track := 0; track < event.NumTracks; track++ {
				for step := 0; step < event.NumEvents; step++ {
					var word uint32
					if err := binary.Read(r, binary.LittleEndian, &word); err != nil {
						return nil, err
					}
					*song.EventAt(mode, pattern, track, step) = event.FromPacked(word)
				}
			}
		}
	}

	return song, nil
}

// SaveBinary writes song's dense snapshot to path.
func SaveBinary(path string, song *event.Song) error {
	return os.WriteFile(path, EncodeBinary(song), 0644)
}

// LoadBinary reads and decodes a dense snapshot from path.
func LoadBinary(path string) (*event.Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBinary(data)
}
