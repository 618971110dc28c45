package persist

import (
	"encoding/json"
	"os"

	"github.com/gruvbok/gruvbok/event"
)

const textFormatVersion = "1.0"

// TextEvent is one active event in a sparse text document.
type TextEvent struct {
	Mode    int    `json:"mode"`
	Pattern int    `json:"pattern"`
	Track   int    `json:"track"`
	Step    int    `json:"step"`
	Switch  bool   `json:"switch"`
	Pots    [4]int `json:"pots"`
}

// TextDocument is the sparse, human-readable project format: only active
// events are listed, everything else is implicitly empty.
type TextDocument struct {
	Version string      `json:"version"`
	Name    string      `json:"name"`
	Tempo   int         `json:"tempo"`
	Events  []TextEvent `json:"events"`
}

// EncodeText scans song for active events and builds a TextDocument
// listing them.
func EncodeText(song *event.Song, name string, tempo int) *TextDocument {
	doc := &TextDocument{Version: textFormatVersion, Name: name, Tempo: tempo}

	for mode := 0; mode < event.NumModes; mode++ {
		for pattern := 0; pattern < event.NumPatterns; pattern++ {
			for track := 0; track < event.NumTracks; track++ {
				for step := 0; step < event.NumEvents; step++ {
					ev := song.EventAt(mode, pattern, track, step)
					if !ev.Switch() {
						continue
					}
					doc.Events = append(doc.Events, TextEvent{
						Mode: mode, Pattern: pattern, Track: track, Step: step,
						Switch: true,
						Pots:   [4]int{int(ev.Pot(0)), int(ev.Pot(1)), int(ev.Pot(2)), int(ev.Pot(3))},
					})
				}
			}
		}
	}

	return doc
}

// DecodeText builds a fresh Song from doc. Entries addressing an
// out-of-range slot are dropped rather than clamped, since a hand-edited
// text file with a garbage index is a data error, not a device input to
// defend against.
func DecodeText(doc *TextDocument) *event.Song {
	song := event.New()
	for _, e := range doc.Events {
		if !inRange(e.Mode, event.NumModes) || !inRange(e.Pattern, event.NumPatterns) ||
			!inRange(e.Track, event.NumTracks) || !inRange(e.Step, event.NumEvents) {
			continue
		}
		ev := song.EventAt(e.Mode, e.Pattern, e.Track, e.Step)
		ev.SetSwitch(e.Switch)
		for i, v := range e.Pots {
			ev.SetPot(i, v)
		}
	}
	return song
}

func inRange(v, n int) bool {
	return v >= 0 && v < n
}

// SaveText marshals song as a sparse TextDocument and writes it to path.
func SaveText(path string, song *event.Song, name string, tempo int) error {
	data, err := json.MarshalIndent(EncodeText(song, name, tempo), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadText reads and decodes a sparse TextDocument, returning the Song,
// its stored name, and its stored tempo.
func LoadText(path string) (song *event.Song, name string, tempo int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", 0, err
	}

	var doc TextDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", 0, err
	}

	return DecodeText(&doc), doc.Name, doc.Tempo, nil
}
