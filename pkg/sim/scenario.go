package sim

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-mirror/pkg/geom"
	"github.com/teslashibe/go-mirror/pkg/mirror"
)

// Scenario action kinds.
const (
	ActionReveal      = "reveal"
	ActionEnding      = "ending"
	ActionEndingPhase = "ending_phase"
	ActionExtraDelay  = "extra_delay"
	ActionFreeze      = "freeze"
	ActionEscalation  = "escalation"
)

// Keyframe places the observer at time T (seconds from scenario start).
type Keyframe struct {
	T        float64   `yaml:"t"`
	Position geom.Vec3 `yaml:"position"`
	Forward  geom.Vec3 `yaml:"forward"`
}

// Action is a narrative trigger fired once when playback reaches T.
type Action struct {
	T       float64 `yaml:"t"`
	Kind    string  `yaml:"action"`
	Phase   string  `yaml:"phase,omitempty"`
	Value   int     `yaml:"value,omitempty"`
	Enabled *bool   `yaml:"enabled,omitempty"`
}

// Scenario is a scripted observer path plus timed actions.
type Scenario struct {
	Name     string     `yaml:"name"`
	Seed     int64      `yaml:"seed"`
	Preset   string     `yaml:"preset"`
	Duration float64    `yaml:"duration"`
	Observer []Keyframe `yaml:"observer"`
	Actions  []Action   `yaml:"actions"`
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(s.Actions, func(i, j int) bool { return s.Actions[i].T < s.Actions[j].T })
	return &s, nil
}

// Validate checks keyframe ordering and action arguments.
func (s *Scenario) Validate() error {
	if len(s.Observer) == 0 {
		return fmt.Errorf("%w: no observer keyframes", ErrInvalidScenario)
	}
	for i, k := range s.Observer {
		if k.T < 0 {
			return fmt.Errorf("%w: keyframe %d has negative time", ErrInvalidScenario, i)
		}
		if i > 0 && k.T < s.Observer[i-1].T {
			return fmt.Errorf("%w: keyframe %d is out of order", ErrInvalidScenario, i)
		}
		if !k.Position.IsFinite() || !k.Forward.IsFinite() {
			return fmt.Errorf("%w: keyframe %d is not finite", ErrInvalidScenario, i)
		}
	}
	for i := range s.Actions {
		a := &s.Actions[i]
		a.Kind = strings.ToLower(strings.TrimSpace(a.Kind))
		switch a.Kind {
		case ActionReveal, ActionEnding, ActionExtraDelay, ActionFreeze:
		case ActionEndingPhase:
			if _, err := mirror.ParseEndingPhase(a.Phase); err != nil {
				return fmt.Errorf("%w: action %d: %w", ErrInvalidScenario, i, err)
			}
		case ActionEscalation:
			if a.Value < 0 || a.Value > MaxEscalation {
				return fmt.Errorf("%w: action %d: escalation %d out of range", ErrInvalidScenario, i, a.Value)
			}
		default:
			return fmt.Errorf("%w: action %d: %w %q", ErrInvalidScenario, i, ErrUnknownAction, a.Kind)
		}
	}
	if s.Preset != "" {
		if _, err := mirror.PresetConfig(s.Preset); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
	}
	return nil
}

// End is the playback length: Duration when set, else the last scripted time.
func (s *Scenario) End() float64 {
	if s.Duration > 0 {
		return s.Duration
	}
	end := s.Observer[len(s.Observer)-1].T
	if n := len(s.Actions); n > 0 && s.Actions[n-1].T > end {
		end = s.Actions[n-1].T
	}
	return end
}

// ObserverAt linearly interpolates the observer path, holding the first and
// last keyframes outside the scripted range.
func (s *Scenario) ObserverAt(t float64) mirror.Pose {
	ks := s.Observer
	if t <= ks[0].T {
		return mirror.NewPose(ks[0].Position, ks[0].Forward)
	}
	last := ks[len(ks)-1]
	if t >= last.T {
		return mirror.NewPose(last.Position, last.Forward)
	}
	i := sort.Search(len(ks), func(i int) bool { return ks[i].T > t })
	a, b := ks[i-1], ks[i]
	span := b.T - a.T
	if span <= 0 {
		return mirror.NewPose(b.Position, b.Forward)
	}
	u := (t - a.T) / span
	return mirror.NewPose(a.Position.Lerp(b.Position, u), a.Forward.Lerp(b.Forward, u))
}

// playback walks a scenario's actions in time order.
type playback struct {
	scenario *Scenario
	next     int
}

// due returns actions whose time has been reached since the previous call.
func (p *playback) due(t float64) []Action {
	start := p.next
	for p.next < len(p.scenario.Actions) && p.scenario.Actions[p.next].T <= t {
		p.next++
	}
	return p.scenario.Actions[start:p.next]
}
