package connection

import "fmt"

// Kind identifies the machine-readable category of a core failure: a
// single typed enum a caller can switch on via errors.As, rather than a
// domain/code pair.
type Kind string

const (
	// KindInvalidOption means an unknown bond option name, or a value that
	// fails the option's grammar.
	KindInvalidOption Kind = "invalid_option"

	// KindMissingMode means a bond setting has no "mode" option.
	KindMissingMode Kind = "missing_mode"

	// KindIncompatibleOptions means two options mutually exclude each other
	// (e.g. miimon and arp_interval both positive).
	KindIncompatibleOptions Kind = "incompatible_options"

	// KindOptionRequiresOther means an option is only meaningful together
	// with another option that is absent (e.g. arp_ip_target without
	// arp_interval).
	KindOptionRequiresOther Kind = "option_requires_other"

	// KindNormalizable means the setting is valid but should be silently
	// rewritten (mode spelling, options unsupported in the current mode).
	KindNormalizable Kind = "normalizable"

	// KindWirelessSecurityInvalidProperty means the supplied wireless
	// security configuration is incompatible with the class of AP it is
	// being completed against.
	KindWirelessSecurityInvalidProperty Kind = "wireless_security_invalid_property"

	// KindWirelessSecurityLeapRequiresUsername means LEAP was selected
	// without a leap-username.
	KindWirelessSecurityLeapRequiresUsername Kind = "wireless_security_leap_requires_username"

	// KindEAPMissingProperty means a wpa-eap or Dynamic WEP completion
	// requires an 802.1x setting (or a required 802.1x property) that is
	// absent.
	KindEAPMissingProperty Kind = "eap_missing_property"
)

// Prefix strings are the ABI-mandated human prefix for errors raised by
// the named setting group.
const (
	PrefixBond             = "bond.options: "
	PrefixWirelessSecurity = "802-11-wireless-security: "
)

// CoreError is the single error type returned by every fallible core
// operation: a kind plus an ABI prefix, since the core never has a device
// or bond name to report. Err holds the underlying error when a CoreError
// wraps one; it is nil for errors synthesized directly from a format
// string, which is every error NewBondError and NewWirelessSecurityError
// build.
type CoreError struct {
	Kind   Kind
	Prefix string
	Detail string
	Err    error
}

func (e *CoreError) Error() string {
	return fmt.Sprintf("%s%s", e.Prefix, e.Detail)
}

// Is allows errors.Is(err, &CoreError{Kind: K}) style matching on Kind alone.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Unwrap exposes the underlying error, if any, so errors.Is/errors.As can
// see through a CoreError to whatever failure it wraps.
func (e *CoreError) Unwrap() error {
	return e.Err
}

// NewBondError builds a CoreError prefixed per the bond.options ABI contract.
func NewBondError(kind Kind, format string, args ...any) *CoreError {
	return &CoreError{Kind: kind, Prefix: PrefixBond, Detail: fmt.Sprintf(format, args...)}
}

// NewWirelessSecurityError builds a CoreError prefixed per the
// 802-11-wireless-security ABI contract.
func NewWirelessSecurityError(kind Kind, format string, args ...any) *CoreError {
	return &CoreError{Kind: kind, Prefix: PrefixWirelessSecurity, Detail: fmt.Sprintf(format, args...)}
}

// IsNormalizable reports whether err is a CoreError signalling that the
// caller should silently rewrite and retry rather than reject outright.
func IsNormalizable(err error) bool {
	ce, ok := err.(*CoreError)
	return ok && ce.Kind == KindNormalizable
}
