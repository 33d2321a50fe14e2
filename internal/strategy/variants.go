package strategy

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

//go:embed variants/*.yaml
var variantFiles embed.FS

// DynamicLimit in a resource limit means the limit follows the end of the
// game instead of a fixed number.
const DynamicLimit = 100

// Step is one candidate action of a stage. The first step whose conditions
// hold and whose moves are legal is played.
type Step struct {
	Name string `yaml:"name"`

	// TakeCamels and TakeGold take the resource when the dice give at least
	// that many, while the player holds less than the matching limit.
	TakeCamels  int `yaml:"take_camels"`
	TakeGold    int `yaml:"take_gold"`
	CamelsBelow int `yaml:"camels_below"`
	GoldBelow   int `yaml:"gold_below"`
	// CamelTarget and GoldTarget take the resource only when it lifts the
	// player to the target.
	CamelTarget int `yaml:"camel_target"`
	GoldTarget  int `yaml:"gold_target"`

	// CubeValue fills souks when the best region is worth at least this.
	CubeValue   int  `yaml:"cube_value"`
	SmallGroups bool `yaml:"small_groups"`
	Supervisor  bool `yaml:"supervisor"`
	TakeCard    bool `yaml:"take_card"`
	// Boost allows spending a hand card on an extra die.
	Boost bool `yaml:"boost"`
	// Trade allows the swap card to cover a building.
	Trade bool `yaml:"trade"`
}

// Stage groups the steps played while some buildings are still missing.
type Stage struct {
	Name         string   `yaml:"name"`
	WhileMissing []string `yaml:"while_missing"`
	Steps        []Step   `yaml:"steps"`

	missing []core.Building
}

// Variant is a complete robot personality.
type Variant struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Buildings   []string `yaml:"buildings"`
	// ExactBuild builds only the first missing building of the list.
	ExactBuild bool `yaml:"exact_build"`
	// YellowDice is how many extra dice the start player buys while it
	// holds more than YellowGoldReserve gold.
	YellowDice        int `yaml:"yellow_dice"`
	YellowGoldReserve int `yaml:"yellow_gold_reserve"`
	// PayCamelValue is the least souk value worth a camel to keep a cube.
	PayCamelValue int     `yaml:"pay_camel_value"`
	Stages        []Stage `yaml:"stages"`

	priority []core.Building
}

// ParseVariant decodes and checks a variant document.
func ParseVariant(data []byte) (*Variant, error) {
	var v Variant
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode variant: %w", err)
	}
	if err := v.resolve(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *Variant) resolve() error {
	if v.Name == "" {
		return fmt.Errorf("variant has no name")
	}
	if len(v.Stages) == 0 {
		return fmt.Errorf("variant %s: no stages", v.Name)
	}
	seen := make(map[core.Building]bool)
	for _, name := range v.Buildings {
		bld, err := parseBuilding(name)
		if err != nil {
			return fmt.Errorf("variant %s: %w", v.Name, err)
		}
		if seen[bld] {
			return fmt.Errorf("variant %s: building %s listed twice", v.Name, name)
		}
		seen[bld] = true
		v.priority = append(v.priority, bld)
	}
	// unlisted buildings go last in table order
	for bld := core.Building(0); bld < core.NumBuildings; bld++ {
		if !seen[bld] {
			v.priority = append(v.priority, bld)
		}
	}
	for i := range v.Stages {
		st := &v.Stages[i]
		if len(st.Steps) == 0 {
			return fmt.Errorf("variant %s: stage %q has no steps", v.Name, st.Name)
		}
		st.missing = st.missing[:0]
		for _, name := range st.WhileMissing {
			bld, err := parseBuilding(name)
			if err != nil {
				return fmt.Errorf("variant %s stage %q: %w", v.Name, st.Name, err)
			}
			st.missing = append(st.missing, bld)
		}
	}
	if v.YellowDice < 0 || v.YellowDice > core.NumExtraDice {
		return fmt.Errorf("variant %s: yellow_dice %d out of range", v.Name, v.YellowDice)
	}
	return nil
}

func parseBuilding(name string) (core.Building, error) {
	for bld := core.Building(0); bld < core.NumBuildings; bld++ {
		if bld.String() == strings.ToLower(name) {
			return bld, nil
		}
	}
	return 0, fmt.Errorf("unknown building %q", name)
}

// Priority lists every building, most wanted first.
func (v *Variant) Priority() []core.Building { return v.priority }

// StageFor returns the first stage whose buildings are not all owned by the
// player. A stage without buildings always applies.
func (v *Variant) StageFor(d *PlayData) *Stage {
	for i := range v.Stages {
		st := &v.Stages[i]
		if len(st.missing) == 0 {
			return st
		}
		for _, bld := range st.missing {
			if !d.Has(d.Player, bld) {
				return st
			}
		}
	}
	return &v.Stages[len(v.Stages)-1]
}

// ErrUnknownVariant is returned for a variant name with no built-in table.
var ErrUnknownVariant = errors.New("unknown robot variant")

// LoadVariant returns the built-in variant called name.
func LoadVariant(name string) (*Variant, error) {
	data, err := variantFiles.ReadFile(path.Join("variants", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownVariant, name)
	}
	return ParseVariant(data)
}

// Variants lists the built-in variant names.
func Variants() []string {
	entries, _ := variantFiles.ReadDir("variants")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// limit resolves a resource limit for the current round. Zero means no
// limit.
func limit(v, round int) int {
	switch {
	case v == 0:
		return 1 << 30
	case v < DynamicLimit:
		return v
	case round == core.LastDay-1:
		return 8
	case round >= core.LastDay:
		return 4
	}
	return 10
}
