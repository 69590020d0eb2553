package bond

import (
	"strings"

	"github.com/SISW-MOM/NetworkManager/internal/connection"
)

// Verify implements connection.Setting: whole-setting verification
// performing, in order, per-option validation, cross-field consistency
// checks (all fatal), then mode-spelling and per-mode option normalisation
// (both reported via connection.KindNormalizable). It returns nil on a
// setting that needs no rewrite at all.
func (s *Setting) Verify(conn *connection.Connection) error {
	// Step 1: per-option validation.
	s.ensureCache()
	for _, e := range s.cache {
		if !ValidateOption(e.name, &e.value) {
			return connection.NewBondError(connection.KindInvalidOption,
				"invalid option '%s' or its value '%s'", e.name, e.value)
		}
	}

	// Step 2: numeric readouts.
	miimon := intOrZero(s.options[OptionMiimon])
	arpInterval := intOrZero(s.options[OptionARPInterval])
	numGratARP := intOrDefault(s.options, OptionNumGratARP, -1)
	numUnsolNA := intOrDefault(s.options, OptionNumUnsolNA, -1)

	// Step 3: monitor exclusivity.
	if miimon > 0 && arpInterval > 0 {
		return connection.NewBondError(connection.KindIncompatibleOptions,
			"only one of '%s' and '%s' can be set", OptionMiimon, OptionARPInterval)
	}

	// Step 4/5: mode presence and canonicalisation.
	modeRaw, hasMode := s.options[OptionMode]
	if !hasMode {
		return connection.NewBondError(connection.KindMissingMode,
			"mandatory option '%s' is missing", OptionMode)
	}
	mode, ok := ParseMode(modeRaw)
	if !ok {
		return connection.NewBondError(connection.KindInvalidOption,
			"'%s' is not a valid value for '%s'", modeRaw, OptionMode)
	}

	// Step 6: mode/interval compatibility.
	if (mode == ModeTLB || mode == ModeALB) && arpInterval > 0 {
		return connection.NewBondError(connection.KindIncompatibleOptions,
			"'%s=%s' is incompatible with '%s > 0'", OptionMode, mode, OptionARPInterval)
	}

	// Step 7: primary applicability.
	primary, hasPrimary := s.options[OptionPrimary]
	if mode == ModeActiveBackup {
		if hasPrimary && !validateIfname(primary) {
			return connection.NewBondError(connection.KindInvalidOption,
				"'%s' is not valid for the '%s' option", primary, OptionPrimary)
		}
	} else if hasPrimary {
		return connection.NewBondError(connection.KindOptionRequiresOther,
			"'%s' option is only valid for '%s=%s'", OptionPrimary, OptionMode, ModeActiveBackup)
	}

	// Step 8: InfiniBand compatibility.
	if conn != nil {
		if _, hasInfiniBand := conn.Get(connection.GroupInfiniBand); hasInfiniBand && mode != ModeActiveBackup {
			return connection.NewBondError(connection.KindIncompatibleOptions,
				"'%s=%s' is not a valid configuration for '%s'", OptionMode, mode, connection.GroupInfiniBand)
		}
	}

	// Step 9: delay dependencies.
	if miimon == 0 {
		if up := intOrZero(s.options[OptionUpDelay]); up > 0 {
			return connection.NewBondError(connection.KindOptionRequiresOther,
				"'%s' option requires '%s' option to be enabled", OptionUpDelay, OptionMiimon)
		}
		if down := intOrZero(s.options[OptionDownDelay]); down > 0 {
			return connection.NewBondError(connection.KindOptionRequiresOther,
				"'%s' option requires '%s' option to be enabled", OptionDownDelay, OptionMiimon)
		}
	}

	// Step 10: ARP target consistency.
	arpIPTarget, hasARPIPTarget := s.options[OptionARPIPTarget]
	if arpInterval > 0 {
		if !hasARPIPTarget || arpIPTarget == "" {
			return connection.NewBondError(connection.KindOptionRequiresOther,
				"'%s' option requires '%s' option to be set", OptionARPInterval, OptionARPIPTarget)
		}
		for _, addr := range strings.Split(arpIPTarget, ",") {
			if addr == "" || !isIPv4DottedQuad(addr) {
				return connection.NewBondError(connection.KindInvalidOption,
					"'%s' is not a valid IPv4 address for '%s' option", addr, OptionARPIPTarget)
			}
		}
	} else if hasARPIPTarget {
		return connection.NewBondError(connection.KindOptionRequiresOther,
			"'%s' option requires '%s' option to be set", OptionARPIPTarget, OptionARPInterval)
	}

	// Step 11: LACP rate scope.
	if lacpRate, ok := s.options[OptionLACPRate]; ok && mode != Mode8023AD {
		if lacpRate != "0" && lacpRate != "slow" {
			return connection.NewBondError(connection.KindOptionRequiresOther,
				"'%s' option is only valid with mode '%s'", OptionLACPRate, Mode8023AD)
		}
	}

	// Step 12: gratuitous-ARP twin.
	if numGratARP != -1 && numUnsolNA != -1 && numGratARP != numUnsolNA {
		return connection.NewBondError(connection.KindIncompatibleOptions,
			"'%s' and '%s' cannot have different values", OptionNumGratARP, OptionNumUnsolNA)
	}

	// Step 13 (required interface name) is delegated to the enclosing
	// connection and is out of this repository's scope: the core
	// Connection model carries no interface-name field.

	// *** below this line: NORMALIZABLE, not fatal ***

	// Step 14: mode spelling normalisation.
	if modeRaw != string(mode) {
		return &connection.CoreError{
			Kind:   connection.KindNormalizable,
			Prefix: connection.PrefixBond,
			Detail: "rewrite: canonicalize mode to " + quote(string(mode)),
		}
	}

	// Step 15: per-mode option culling.
	for _, e := range s.cache {
		if !SupportedInMode(e.name, mode) {
			return &connection.CoreError{
				Kind:   connection.KindNormalizable,
				Prefix: connection.PrefixBond,
				Detail: "rewrite: drop '" + e.name + "', not valid with mode '" + string(mode) + "'",
			}
		}
	}

	return nil
}

func intOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := parseUint(s)
	if err != nil {
		return 0
	}
	return int(n)
}

func intOrDefault(options map[string]string, name string, def int) int {
	v, ok := options[name]
	if !ok {
		return def
	}
	n, err := parseUint(v)
	if err != nil {
		return def
	}
	return int(n)
}

func quote(s string) string {
	return "'" + s + "'"
}
