package arbor

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Key    string  `json:"key,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// scriptFile is the top-level JSON structure for a script.
type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

var scriptActions = map[string]bool{
	"click": true, "drag": true, "hover": true, "key": true,
	"wheel": true, "wait": true, "screenshot": true,
}

// Script sequences injected input and screenshots across frames for
// automated runs. Attach to a View via SetScript.
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON script:
//
//	{"steps": [
//	  {"action": "click", "x": 640, "y": 360},
//	  {"action": "drag", "fromX": 100, "fromY": 100, "toX": 300, "toY": 200, "frames": 10},
//	  {"action": "hover", "x": 640, "y": 360},
//	  {"action": "key", "key": "r"},
//	  {"action": "wheel", "dy": -40},
//	  {"action": "wait", "frames": 30},
//	  {"action": "screenshot", "label": "zoomed"}
//	]}
func LoadScript(jsonData []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("arbor: parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("arbor: parse script: no steps")
	}
	for i, st := range f.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("arbor: parse script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "key" && ActionForKey(st.Key) == ActionNone {
			return nil, fmt.Errorf("arbor: parse script: step %d: unbound key %q", i, st.Key)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// SetScript attaches a script to the view. Its step method is called from
// Update before input is processed each frame.
func (v *View) SetScript(s *Script) {
	v.script = s
}

// Done reports whether all steps have been executed.
func (s *Script) Done() bool {
	return s.done
}

// step advances the script by one frame.
func (s *Script) step(v *View) {
	if s.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(v.injectQueue) > 0 {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "screenshot":
		v.Screenshot(st.Label)
	case "click":
		v.InjectClick(st.X, st.Y)
	case "hover":
		v.InjectHover(st.X, st.Y)
	case "drag":
		v.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "key":
		v.InjectAction(ActionForKey(st.Key))
	case "wheel":
		v.InjectWheel(st.DY)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && len(v.injectQueue) == 0 {
		s.done = true
	}
}
