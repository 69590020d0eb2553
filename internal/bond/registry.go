// Package bond implements the kernel-bonding-driver option schema and
// verifier: a static registry of recognised options (this file), a
// per-option validator, an ordered option store with insertion-time side
// effects, and a whole-setting verifier. The registry tracks
// libnm-core/nm-setting-bond.c's valid_options_lst / OptionMeta table and
// is a compile-time constant: it carries no mutable state and is safe for
// concurrent reads from any number of goroutines.
package bond

import "fmt"

// Mode is a bonding aggregation algorithm selector. The string values are
// part of the external ABI and must never be renamed.
type Mode string

const (
	ModeRoundRobin   Mode = "balance-rr"
	ModeActiveBackup Mode = "active-backup"
	ModeXOR          Mode = "balance-xor"
	ModeBroadcast    Mode = "broadcast"
	Mode8023AD       Mode = "802.3ad"
	ModeTLB          Mode = "balance-tlb"
	ModeALB          Mode = "balance-alb"
)

// modesByIndex fixes the external text <-> integer mapping: the decimal
// index is part of the contract downstream components rely on.
var modesByIndex = []Mode{
	ModeRoundRobin,   // 0
	ModeActiveBackup, // 1
	ModeXOR,          // 2
	ModeBroadcast,    // 3
	Mode8023AD,       // 4
	ModeTLB,          // 5
	ModeALB,          // 6
}

// modeBit returns the bit position for mode within an unsupported_modes
// bitmask, or -1 if mode is not one of the seven recognised modes.
func modeBit(m Mode) int {
	for i, candidate := range modesByIndex {
		if candidate == m {
			return i
		}
	}
	return -1
}

// ModeToIndex returns the decimal index for a canonical mode string, or
// false if m is not a recognised mode.
func ModeToIndex(m Mode) (int, bool) {
	i := modeBit(m)
	return i, i >= 0
}

// ModeFromIndex returns the canonical mode string for a decimal index, or
// false if idx is out of range.
func ModeFromIndex(idx int) (Mode, bool) {
	if idx < 0 || idx >= len(modesByIndex) {
		return "", false
	}
	return modesByIndex[idx], true
}

// ParseMode accepts either the canonical mode string or its decimal index
// and returns the canonical string form.
func ParseMode(s string) (Mode, bool) {
	for _, m := range modesByIndex {
		if string(m) == s {
			return m, true
		}
	}
	idx, err := parseUint(s)
	if err != nil {
		return "", false
	}
	return ModeFromIndex(int(idx))
}

// Kind is the value grammar an option's Meta dispatches on.
type Kind int

const (
	// KindInt accepts an unsigned decimal integer within [Min, Max].
	KindInt Kind = iota
	// KindList accepts one of Enum's literal strings.
	KindList
	// KindIntOrList accepts either the Int or the List grammar.
	KindIntOrList
	// KindIPList accepts a comma-separated list of IPv4 dotted quads.
	KindIPList
	// KindMAC accepts a canonical colon-separated 6-octet MAC address.
	KindMAC
	// KindIfname accepts a kernel network interface name.
	KindIfname
)

// Meta describes one recognised bond option's grammar, default, and
// per-mode applicability.
type Meta struct {
	Name         string
	Default      string
	Kind         Kind
	Min, Max     uint64 // only meaningful for KindInt / KindIntOrList
	Enum         []Mode // reused as a generic ordered string list; only meaningful for KindList / KindIntOrList
	Unsupported  uint32 // bitmask over the 7 bond modes: bit set => not allowed in that mode
}

// The 27 recognised option names. Case-sensitive; never renamed; this is
// the external ABI vocabulary.
const (
	OptionMode             = "mode"
	OptionMiimon           = "miimon"
	OptionDownDelay        = "downdelay"
	OptionUpDelay          = "updelay"
	OptionARPInterval      = "arp_interval"
	OptionARPIPTarget      = "arp_ip_target"
	OptionARPValidate      = "arp_validate"
	OptionPrimary          = "primary"
	OptionPrimaryReselect  = "primary_reselect"
	OptionFailOverMAC      = "fail_over_mac"
	OptionUseCarrier       = "use_carrier"
	OptionADSelect         = "ad_select"
	OptionXmitHashPolicy   = "xmit_hash_policy"
	OptionResendIGMP       = "resend_igmp"
	OptionLACPRate         = "lacp_rate"
	OptionActiveSlave      = "active_slave"
	OptionADActorSysPrio   = "ad_actor_sys_prio"
	OptionADActorSystem    = "ad_actor_system"
	OptionADUserPortKey    = "ad_user_port_key"
	OptionAllSlavesActive  = "all_slaves_active"
	OptionARPAllTargets    = "arp_all_targets"
	OptionMinLinks         = "min_links"
	OptionNumGratARP       = "num_grat_arp"
	OptionNumUnsolNA       = "num_unsol_na"
	OptionPacketsPerSlave  = "packets_per_slave"
	OptionTLBDynamicLB     = "tlb_dynamic_lb"
	OptionLPInterval       = "lp_interval"
)

func bit(modes ...Mode) uint32 {
	var mask uint32
	for _, m := range modes {
		i := modeBit(m)
		if i < 0 {
			panic(fmt.Sprintf("bond: unknown mode %q in registry bitmask", m))
		}
		mask |= 1 << uint(i)
	}
	return mask
}

func allExcept(modes ...Mode) uint32 {
	return ^bit(modes...) & (1<<uint(len(modesByIndex)) - 1)
}

// validOrder is the registry's canonical order, which is also the order
// the ABI vocabulary is enumerated in.
var validOrder = []string{
	OptionMode, OptionMiimon, OptionDownDelay, OptionUpDelay,
	OptionARPInterval, OptionARPIPTarget, OptionARPValidate,
	OptionPrimary, OptionPrimaryReselect, OptionFailOverMAC,
	OptionUseCarrier, OptionADSelect, OptionXmitHashPolicy,
	OptionResendIGMP, OptionLACPRate, OptionActiveSlave,
	OptionADActorSysPrio, OptionADActorSystem, OptionADUserPortKey,
	OptionAllSlavesActive, OptionARPAllTargets, OptionMinLinks,
	OptionNumGratARP, OptionNumUnsolNA, OptionPacketsPerSlave,
	OptionTLBDynamicLB, OptionLPInterval,
}

var registry = map[string]Meta{
	OptionActiveSlave:     {Name: OptionActiveSlave, Default: "", Kind: KindIfname},
	OptionADActorSysPrio:  {Name: OptionADActorSysPrio, Default: "65535", Kind: KindInt, Min: 1, Max: 65535},
	OptionADActorSystem:   {Name: OptionADActorSystem, Default: "", Kind: KindMAC},
	OptionADSelect: {
		Name: OptionADSelect, Default: "stable", Kind: KindIntOrList,
		Min: 0, Max: 2, Enum: []Mode{"stable", "bandwidth", "count"},
	},
	OptionADUserPortKey:  {Name: OptionADUserPortKey, Default: "0", Kind: KindInt, Min: 0, Max: 1023},
	OptionAllSlavesActive: {Name: OptionAllSlavesActive, Default: "0", Kind: KindInt, Min: 0, Max: 1},
	OptionARPAllTargets: {
		Name: OptionARPAllTargets, Default: "any", Kind: KindIntOrList,
		Min: 0, Max: 1, Enum: []Mode{"any", "all"},
	},
	OptionARPInterval: {Name: OptionARPInterval, Default: "0", Kind: KindInt, Min: 0, Max: maxUint32},
	OptionARPIPTarget: {Name: OptionARPIPTarget, Default: "", Kind: KindIPList},
	OptionARPValidate: {
		Name: OptionARPValidate, Default: "none", Kind: KindIntOrList,
		Min: 0, Max: 6,
		Enum: []Mode{"none", "active", "backup", "all", "filter", "filter_active", "filter_backup"},
	},
	OptionDownDelay: {Name: OptionDownDelay, Default: "0", Kind: KindInt, Min: 0, Max: maxUint32},
	OptionFailOverMAC: {
		Name: OptionFailOverMAC, Default: "none", Kind: KindIntOrList,
		Min: 0, Max: 2, Enum: []Mode{"none", "active", "follow"},
	},
	OptionLACPRate: {
		Name: OptionLACPRate, Default: "slow", Kind: KindIntOrList,
		Min: 0, Max: 1, Enum: []Mode{"slow", "fast"},
	},
	OptionLPInterval: {Name: OptionLPInterval, Default: "1", Kind: KindInt, Min: 1, Max: maxUint32},
	OptionMiimon:     {Name: OptionMiimon, Default: "100", Kind: KindInt, Min: 0, Max: maxUint32},
	OptionMinLinks:   {Name: OptionMinLinks, Default: "0", Kind: KindInt, Min: 0, Max: maxUint32},
	OptionMode: {
		Name: OptionMode, Default: "balance-rr", Kind: KindIntOrList,
		Min: 0, Max: 6, Enum: modesByIndex,
	},
	OptionNumGratARP:      {Name: OptionNumGratARP, Default: "1", Kind: KindInt, Min: 0, Max: 255},
	OptionNumUnsolNA:      {Name: OptionNumUnsolNA, Default: "1", Kind: KindInt, Min: 0, Max: 255},
	OptionPacketsPerSlave: {Name: OptionPacketsPerSlave, Default: "1", Kind: KindInt, Min: 0, Max: 65535},
	OptionPrimary:         {Name: OptionPrimary, Default: "", Kind: KindIfname},
	OptionPrimaryReselect: {
		Name: OptionPrimaryReselect, Default: "always", Kind: KindIntOrList,
		Min: 0, Max: 2, Enum: []Mode{"always", "better", "failure"},
	},
	OptionResendIGMP:   {Name: OptionResendIGMP, Default: "1", Kind: KindInt, Min: 0, Max: 255},
	OptionTLBDynamicLB: {Name: OptionTLBDynamicLB, Default: "1", Kind: KindInt, Min: 0, Max: 1},
	OptionUpDelay:      {Name: OptionUpDelay, Default: "0", Kind: KindInt, Min: 0, Max: maxUint32},
	OptionUseCarrier:   {Name: OptionUseCarrier, Default: "1", Kind: KindInt, Min: 0, Max: 1},
	OptionXmitHashPolicy: {
		Name: OptionXmitHashPolicy, Default: "layer2", Kind: KindIntOrList,
		Min: 0, Max: 4, Enum: []Mode{"layer2", "layer3+4", "layer2+3", "encap2+3", "encap3+4"},
	},
}

const maxUint32 = 1<<32 - 1

// unsupportedModes mirrors _bond_option_unsupp_mode: a bitmask of modes in
// which the option is NOT allowed.
var unsupportedModes = map[string]uint32{
	OptionActiveSlave:    allExcept(ModeActiveBackup, ModeTLB, ModeALB),
	OptionADActorSysPrio: allExcept(Mode8023AD),
	OptionADActorSystem:  allExcept(Mode8023AD),
	OptionADUserPortKey:  allExcept(Mode8023AD),
	OptionARPInterval:    bit(Mode8023AD, ModeTLB, ModeALB),
	OptionARPIPTarget:    bit(Mode8023AD, ModeTLB, ModeALB),
	OptionARPValidate:    bit(Mode8023AD, ModeTLB, ModeALB),
	OptionLACPRate:       allExcept(Mode8023AD),
	OptionPacketsPerSlave: allExcept(ModeRoundRobin),
	OptionPrimary:        allExcept(ModeActiveBackup, ModeTLB, ModeALB),
	OptionTLBDynamicLB:   allExcept(ModeTLB),
}

func init() {
	for _, name := range validOrder {
		m, ok := registry[name]
		if !ok {
			panic(fmt.Sprintf("bond: registry missing entry for %q", name))
		}
		if m.Min > m.Max && m.Kind == KindInt {
			panic(fmt.Sprintf("bond: registry entry %q has Min > Max", name))
		}
		if mask, ok := unsupportedModes[name]; ok {
			m.Unsupported = mask
			registry[name] = m
		}
	}
	if len(validOrder) != 27 {
		panic(fmt.Sprintf("bond: expected 27 recognised options, registry declares %d", len(validOrder)))
	}
}

// Lookup returns the registry entry for name, or false if name is not
// recognised. O(1) expected.
func Lookup(name string) (Meta, bool) {
	m, ok := registry[name]
	return m, ok
}

// ValidOptions returns the registry's canonical order: the 27 recognised
// option names, MODE-independent, in a fixed contractual order.
func ValidOptions() []string {
	out := make([]string, len(validOrder))
	copy(out, validOrder)
	return out
}

// SupportedInMode reports whether option is usable under mode. An unknown
// option name is reported as supported (callers are expected to have
// already rejected unknown names via Lookup).
func SupportedInMode(option string, mode Mode) bool {
	idx := modeBit(mode)
	if idx < 0 {
		return true
	}
	mask, ok := unsupportedModes[option]
	if !ok {
		return true
	}
	return mask&(1<<uint(idx)) == 0
}
