package bond

import (
	"sort"

	"github.com/SISW-MOM/NetworkManager/internal/connection"
)

// kv is one entry of the sorted iteration cache.
type kv struct {
	name, value string
}

// Setting is the bond setting-group variant: an ordered key/value option
// store with insertion-time side effects enforcing mutual exclusion
// between the two link-monitor families. It implements
// connection.Setting so it can be registered into a connection.Connection
// without that package ever importing this one.
type Setting struct {
	options  map[string]string
	cache    []kv // nil means "needs rebuild"; rebuilt lazily on next indexed read
	onChange []func(name string)
}

// NewSetting returns an empty bond Setting.
func NewSetting() *Setting {
	return &Setting{options: make(map[string]string)}
}

// GroupName implements connection.Setting.
func (s *Setting) GroupName() string { return connection.GroupBond }

// OnChange registers a callback invoked after every successful AddOption
// or SetOptionsRaw (even one that stores the values already present) and
// after every RemoveOption that removed something. The pure
// core never requires a callback; this exists purely for ambient
// observers like logging.
func (s *Setting) OnChange(fn func(name string)) {
	s.onChange = append(s.onChange, fn)
}

func (s *Setting) notify(name string) {
	for _, fn := range s.onChange {
		fn(name)
	}
}

func (s *Setting) invalidateCache() {
	s.cache = nil
}

// AddOption validates (name, value) and, on success, upserts it. Setting
// MIIMON to a non-zero value removes ARP_INTERVAL and ARP_IP_TARGET;
// setting ARP_INTERVAL to a non-zero value removes MIIMON, DOWNDELAY, and
// UPDELAY. Returns false without modifying the setting if (name, value)
// fails validation.
func (s *Setting) AddOption(name, value string) bool {
	if !ValidateOption(name, &value) {
		return false
	}

	s.invalidateCache()
	s.options[name] = value

	switch name {
	case OptionMiimon:
		if value != "0" {
			delete(s.options, OptionARPInterval)
			delete(s.options, OptionARPIPTarget)
		}
	case OptionARPInterval:
		if value != "0" {
			delete(s.options, OptionMiimon)
			delete(s.options, OptionDownDelay)
			delete(s.options, OptionUpDelay)
		}
	}

	s.notify(name)
	return true
}

// SetOptionsRaw replaces the entire options map in one shot, bypassing the
// link-monitor exclusivity side effects of AddOption: the store equivalent
// of a bulk property setter restoring a previously-serialised map, such as
// a config importer would use. Values are validated individually;
// SetOptionsRaw reports false (and loads nothing) if any entry is invalid.
func (s *Setting) SetOptionsRaw(options map[string]string) bool {
	for name, value := range options {
		if !ValidateOption(name, &value) {
			return false
		}
	}
	s.invalidateCache()
	s.options = make(map[string]string, len(options))
	for name, value := range options {
		s.options[name] = value
	}
	s.notify("")
	return true
}

// RemoveOption validates name and removes it if present, reporting whether
// a removal happened.
func (s *Setting) RemoveOption(name string) bool {
	if !ValidateOption(name, nil) {
		return false
	}
	if _, ok := s.options[name]; !ok {
		return false
	}
	s.invalidateCache()
	delete(s.options, name)
	s.notify(name)
	return true
}

// Option returns the stored value for name, if any.
func (s *Setting) Option(name string) (string, bool) {
	v, ok := s.options[name]
	return v, ok
}

// NumOptions returns the number of stored options.
func (s *Setting) NumOptions() int {
	return len(s.options)
}

// ensureCache rebuilds the sorted iteration cache if it was invalidated by
// a mutation since the last indexed read.
func (s *Setting) ensureCache() {
	if s.cache != nil {
		return
	}
	names := make([]string, 0, len(s.options))
	for name := range s.options {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if a == OptionMode {
			return true
		}
		if b == OptionMode {
			return false
		}
		return a < b
	})
	cache := make([]kv, len(names))
	for i, name := range names {
		cache[i] = kv{name: name, value: s.options[name]}
	}
	s.cache = cache
}

// OptionAt returns the (name, value) pair at idx under the deterministic
// sort order (MODE first, then lexicographic). Indices are invalidated by
// any mutation; ok is false if idx is out of range.
func (s *Setting) OptionAt(idx int) (name, value string, ok bool) {
	s.ensureCache()
	if idx < 0 || idx >= len(s.cache) {
		return "", "", false
	}
	return s.cache[idx].name, s.cache[idx].value, true
}

// ValidOptions returns the registry's canonical order.
func (s *Setting) ValidOptions() []string {
	return ValidOptions()
}

// OptionDefault returns the registry default for name, except for
// AD_ACTOR_SYSTEM whose default depends on the setting's current mode:
// "00:00:00:00:00:00" iff mode is 802.3ad, "" otherwise.
func (s *Setting) OptionDefault(name string) string {
	meta, ok := Lookup(name)
	if !ok {
		return ""
	}
	if name != OptionADActorSystem {
		return meta.Default
	}
	mode, ok := s.options[OptionMode]
	if !ok {
		return ""
	}
	if canonical, ok := ParseMode(mode); ok && canonical == Mode8023AD {
		return "00:00:00:00:00:00"
	}
	return ""
}

// Equal implements connection.Setting: under every compare flag, for every
// key present on either side, the effective value (stored value, falling
// back to the sibling's num_grat_arp / num_unsol_na, then to the
// per-option default) must match; under INFERRABLE, fail_over_mac and
// active_slave are additionally skipped entirely.
func (s *Setting) Equal(other connection.Setting, flags connection.CompareFlags) bool {
	o, ok := other.(*Setting)
	if !ok || o == nil {
		return false
	}
	return optionsEqualAsym(s, o, flags) && optionsEqualAsym(o, s, flags)
}

func optionsEqualAsym(a, b *Setting, flags connection.CompareFlags) bool {
	inferrable := flags&connection.CompareInferrable != 0
	for name, value := range a.options {
		if inferrable && (name == OptionFailOverMAC || name == OptionActiveSlave) {
			continue
		}

		other, ok := b.options[name]
		if !ok {
			switch name {
			case OptionNumGratARP:
				other, ok = b.options[OptionNumUnsolNA]
			case OptionNumUnsolNA:
				other, ok = b.options[OptionNumGratARP]
			}
		}
		if !ok {
			other = b.OptionDefault(name)
		}
		if value != other {
			return false
		}
	}
	return true
}
