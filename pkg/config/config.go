// Package config implements the scenario loader: a Viper-backed reader
// for the YAML fixture format this repository uses to exercise the bond
// and Wi-Fi decision engines, with optional file-watch support for live
// reload.
package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/SISW-MOM/NetworkManager/internal/bond"
	"github.com/SISW-MOM/NetworkManager/internal/wifi"
)

// ConnectionDoc is one entry of a scenario document's connections[] list.
type ConnectionDoc struct {
	Name             string            `mapstructure:"name"`
	Bond             BondDoc           `mapstructure:"bond"`
	WirelessSecurity WirelessSecDoc    `mapstructure:"wifi_security"`
	IEEE8021X        IEEE8021XDoc      `mapstructure:"ieee8021x"`
	InfiniBand       bool              `mapstructure:"infiniband"`
}

// BondDoc is the bond options sub-document.
type BondDoc struct {
	Options map[string]string `mapstructure:"options"`
}

// WirelessSecDoc is the wireless-security sub-document.
type WirelessSecDoc struct {
	KeyMgmt      string   `mapstructure:"key-mgmt"`
	AuthAlg      string   `mapstructure:"auth-alg"`
	LEAPUsername string   `mapstructure:"leap-username"`
	PSK          string   `mapstructure:"psk"`
	Pairwise     []string `mapstructure:"pairwise"`
	Group        []string `mapstructure:"group"`
}

// IEEE8021XDoc is the 802.1x sub-document.
type IEEE8021XDoc struct {
	EAP        string `mapstructure:"eap"`
	Identity   string `mapstructure:"identity"`
	Phase2Auth string `mapstructure:"phase2-auth"`
}

// ToSetting converts a WirelessSecDoc into a *wifi.WirelessSecuritySetting,
// or nil if the document carries no wireless-security configuration at all
// (every scalar field empty and both cipher lists empty).
func (d WirelessSecDoc) ToSetting() *wifi.WirelessSecuritySetting {
	if d.KeyMgmt == "" && d.AuthAlg == "" && d.LEAPUsername == "" && d.PSK == "" &&
		len(d.Pairwise) == 0 && len(d.Group) == 0 {
		return nil
	}
	return &wifi.WirelessSecuritySetting{
		KeyMgmt:      wifi.KeyMgmt(d.KeyMgmt),
		AuthAlg:      wifi.AuthAlg(d.AuthAlg),
		LEAPUsername: d.LEAPUsername,
		PSK:          d.PSK,
		Pairwise:     d.Pairwise,
		Group:        d.Group,
	}
}

// ToSetting converts an IEEE8021XDoc into a *wifi.EAPSetting, or nil if the
// document is entirely empty.
func (d IEEE8021XDoc) ToSetting() *wifi.EAPSetting {
	if d.EAP == "" && d.Identity == "" && d.Phase2Auth == "" {
		return nil
	}
	return &wifi.EAPSetting{
		EAP:        d.EAP,
		Identity:   d.Identity,
		Phase2Auth: d.Phase2Auth,
	}
}

// AccessPointDoc is one entry of a scenario document's access_points[] list.
type AccessPointDoc struct {
	SSID     string   `mapstructure:"ssid"`
	BSSID    string   `mapstructure:"bssid"`
	Mode     string   `mapstructure:"mode"`
	Privacy  bool     `mapstructure:"privacy"`
	WPAFlags []string `mapstructure:"wpa_flags"`
	RSNFlags []string `mapstructure:"rsn_flags"`
}

// ScenarioRunDoc is one entry of a scenario document's scenarios[] list.
type ScenarioRunDoc struct {
	Name         string `mapstructure:"name"`
	Connection   string `mapstructure:"connection"`
	AccessPoint  string `mapstructure:"access_point"`
	LockBSSID    bool   `mapstructure:"lock_bssid"`
}

// scenarioDoc is the raw unmarshal target for the scenario YAML document
// before Load converts it into typed core values.
type scenarioDoc struct {
	Connections  []ConnectionDoc  `mapstructure:"connections"`
	AccessPoints []AccessPointDoc `mapstructure:"access_points"`
	Scenarios    []ScenarioRunDoc `mapstructure:"scenarios"`
}

// Scenario is the parsed, ready-to-run form of a scenario document: bond
// options already loaded into bond.Setting stores and access points
// already decoded into wifi.APCapability values.
type Scenario struct {
	Connections  map[string]*Connection
	AccessPoints map[string]wifi.APCapability
	Runs         []ScenarioRunDoc
}

// Connection is one named scenario connection: its bond setting plus the
// raw wireless-security/802.1x/infiniband documents Complete needs.
type Connection struct {
	Name             string
	Bond             *bond.Setting
	WirelessSecurity WirelessSecDoc
	IEEE8021X        IEEE8021XDoc
	InfiniBand       bool
}

// flagBits maps the symbolic WPA/RSN flag names used in scenario
// documents onto wifi.WPAFlags bits.
var flagBits = map[string]wifi.WPAFlags{
	"pair_wep40":    wifi.FlagPairWEP40,
	"pair_wep104":   wifi.FlagPairWEP104,
	"pair_tkip":     wifi.FlagPairTKIP,
	"pair_ccmp":     wifi.FlagPairCCMP,
	"group_wep40":   wifi.FlagGroupWEP40,
	"group_wep104":  wifi.FlagGroupWEP104,
	"group_tkip":    wifi.FlagGroupTKIP,
	"group_ccmp":    wifi.FlagGroupCCMP,
	"keymgmt_psk":   wifi.FlagKeyMgmtPSK,
	"keymgmt_802_1x": wifi.FlagKeyMgmt8021X,
}

func decodeFlags(names []string) (wifi.WPAFlags, error) {
	var flags wifi.WPAFlags
	for _, name := range names {
		bit, ok := flagBits[name]
		if !ok {
			return 0, fmt.Errorf("config: unrecognised wifi flag name %q", name)
		}
		flags |= bit
	}
	return flags, nil
}

func decodeMode(s string) wifi.Mode {
	if s == "adhoc" {
		return wifi.ModeAdhoc
	}
	return wifi.ModeInfra
}

// Load reads and unmarshals the scenario document at path, converting
// each connection's bond options into a bond.Setting and each access
// point into a wifi.APCapability.
func Load(path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("NMCORE")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Scenario, error) {
	var raw scenarioDoc
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("config: unmarshaling scenario: %w", err)
	}

	scenario := &Scenario{
		Connections:  make(map[string]*Connection, len(raw.Connections)),
		AccessPoints: make(map[string]wifi.APCapability, len(raw.AccessPoints)),
		Runs:         raw.Scenarios,
	}

	for _, c := range raw.Connections {
		setting := bond.NewSetting()
		if len(c.Bond.Options) > 0 {
			if !setting.SetOptionsRaw(c.Bond.Options) {
				return nil, fmt.Errorf("config: connection %q has an invalid bond option", c.Name)
			}
		}
		scenario.Connections[c.Name] = &Connection{
			Name:             c.Name,
			Bond:             setting,
			WirelessSecurity: c.WirelessSecurity,
			IEEE8021X:        c.IEEE8021X,
			InfiniBand:       c.InfiniBand,
		}
	}

	for _, a := range raw.AccessPoints {
		wpaFlags, err := decodeFlags(a.WPAFlags)
		if err != nil {
			return nil, fmt.Errorf("config: access point %q: %w", a.SSID, err)
		}
		rsnFlags, err := decodeFlags(a.RSNFlags)
		if err != nil {
			return nil, fmt.Errorf("config: access point %q: %w", a.SSID, err)
		}
		scenario.AccessPoints[a.SSID] = wifi.APCapability{
			SSID:     a.SSID,
			BSSID:    a.BSSID,
			Mode:     decodeMode(a.Mode),
			Privacy:  a.Privacy,
			WPAFlags: wpaFlags,
			RSNFlags: rsnFlags,
		}
	}

	return scenario, nil
}

// Watch installs a file-watch on path: whenever the file changes, it
// re-parses and invokes onChange with the fresh *Scenario and a nil error.
// On a parse error onChange receives a nil Scenario and the error; it is
// never handed a partially-parsed Scenario, and the previous good Scenario
// remains whatever the caller already holds. onChange runs on Viper's
// fsnotify goroutine.
func Watch(path string, onChange func(*Scenario, error)) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("NMCORE")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		scenario, err := decode(v)
		onChange(scenario, err)
	})
	v.WatchConfig()
	return nil
}
