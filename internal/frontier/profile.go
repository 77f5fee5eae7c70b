package frontier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Profile is the commander snapshot returned by GET /profile. The schema is
// a strict-superset assumption over the real API surface: unknown fields are
// ignored and most nested records are optional.
type Profile struct {
	Commander    Commander `json:"commander"`
	LastSystem   *System   `json:"lastSystem"`
	LastStarport *Starport `json:"lastStarport"`
	Ship         *Ship     `json:"ship"`
}

type Commander struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Credits       int64  `json:"credits"`
	Debt          int64  `json:"debt"`
	CurrentShipID int    `json:"currentShipId"`
	Alive         *bool  `json:"alive"`
	Docked        bool   `json:"docked"`
	OnFoot        bool   `json:"onfoot"`
	Rank          Ranks  `json:"rank"`
}

// Ranks covers the eleven progression categories.
type Ranks struct {
	Combat       int `json:"combat"`
	Trade        int `json:"trade"`
	Explore      int `json:"explore"`
	Crime        int `json:"crime"`
	Service      int `json:"service"`
	Empire       int `json:"empire"`
	Federation   int `json:"federation"`
	Power        int `json:"power"`
	CQC          int `json:"cqc"`
	Soldier      int `json:"soldier"`
	Exobiologist int `json:"exobiologist"`
}

type System struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	SystemAddress *int64 `json:"systemaddress"`
	Faction       string `json:"faction"`
}

type Starport struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Faction      string `json:"faction"`
	MinorFaction string `json:"minorfaction"`
}

type ShipValue struct {
	Hull     int64 `json:"hull"`
	Modules  int64 `json:"modules"`
	Cargo    int64 `json:"cargo"`
	Total    int64 `json:"total"`
	Unloaned int64 `json:"unloaned"`
}

type ShipHealth struct {
	Hull      int64    `json:"hull"`
	Shield    int64    `json:"shield"`
	ShieldUp  bool     `json:"shieldup"`
	Integrity int64    `json:"integrity"`
	Paintwork int64    `json:"paintwork"`
	Scorch    *float64 `json:"scorch"`
}

type ModuleEngineer struct {
	EngineerName         string `json:"engineerName"`
	EngineerID           int64  `json:"engineerId"`
	RecipeName           string `json:"recipeName"`
	RecipeLocName        string `json:"recipeLocName"`
	RecipeLocDescription string `json:"recipeLocDescription"`
	RecipeLevel          int    `json:"recipeLevel"`
}

type ModuleDetails struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	LocName        string `json:"locName"`
	LocDescription string `json:"locDescription"`
	Value          int64  `json:"value"`
	Free           bool   `json:"free"`
	Health         int64  `json:"health"`
	On             bool   `json:"on"`
	Priority       int    `json:"priority"`
}

// ShipModule is one fitted module slot (hardpoint, core internal, or
// optional internal).
type ShipModule struct {
	Module   ModuleDetails   `json:"module"`
	Engineer *ModuleEngineer `json:"engineer"`
}

// Ship is the commander's current ship. The API reports each fitted slot as
// a top-level key on the ship object (LargeHardpoint1, PowerPlant,
// Slot01_Size6, ...); those land in Modules keyed by slot name.
type Ship struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	Free       bool        `json:"free"`
	ShipName   string      `json:"shipName"`
	Station    *Station    `json:"station"`
	StarSystem *System     `json:"starsystem"`
	Alive      *bool       `json:"alive"`
	Value      *ShipValue  `json:"value"`
	Health     *ShipHealth `json:"health"`

	Modules map[string]ShipModule `json:"-"`
}

type Station struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// moduleSlotPrefixes are the key prefixes the API uses for fitted slots.
var moduleSlotPrefixes = []string{
	"LargeHardpoint", "MediumHardpoint", "SmallHardpoint", "TinyHardpoint",
	"Slot",
}

// coreModuleSlots are the fixed core internal slot names.
var coreModuleSlots = map[string]bool{
	"Armour":                 true,
	"PowerPlant":             true,
	"MainEngines":            true,
	"FrameShiftDrive":        true,
	"LifeSupport":            true,
	"PowerDistributor":       true,
	"Radar":                  true,
	"FuelTank":               true,
	"PlanetaryApproachSuite": true,
	"CargoHatch":             true,
}

func isModuleSlot(key string) bool {
	if coreModuleSlots[key] {
		return true
	}
	for _, prefix := range moduleSlotPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// UnmarshalJSON decodes the fixed ship fields and collects per-slot module
// entries. Slot values that fail to decode as modules (paint jobs, decals)
// are skipped rather than failing the whole profile.
func (s *Ship) UnmarshalJSON(data []byte) error {
	type shipAlias Ship
	var fixed shipAlias
	if err := json.Unmarshal(data, &fixed); err != nil {
		return err
	}
	*s = Ship(fixed)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		if !isModuleSlot(key) {
			continue
		}
		var module ShipModule
		if err := json.Unmarshal(value, &module); err != nil {
			continue
		}
		if s.Modules == nil {
			s.Modules = make(map[string]ShipModule)
		}
		s.Modules[key] = module
	}
	return nil
}

// FetchProfile GETs /profile and decodes it. A nil body or a body that does
// not decode fails with ErrDecode.
func (c *Client) FetchProfile(ctx context.Context) (*Profile, error) {
	data, err := c.Fetch(ctx, "/profile")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: /profile returned no data", ErrDecode)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: /profile: %v", ErrDecode, err)
	}
	return &profile, nil
}
