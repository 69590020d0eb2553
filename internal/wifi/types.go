// Package wifi implements the Wi-Fi capability model and connection
// completer: an immutable description of an access point's advertised
// security capabilities, and a pure reconciler that fills in (or rejects)
// a user-supplied wireless-security configuration against it.
package wifi

// Mode is the access point's operating mode.
type Mode int

const (
	ModeInfra Mode = iota
	ModeAdhoc
)

// WPAFlags is a bitset of the capabilities an AP advertises in its RSN or
// WPA information element. Bit layout mirrors NM80211ApSecurityFlags;
// values are internal, not ABI.
type WPAFlags uint32

const (
	FlagNone WPAFlags = 0

	FlagPairWEP40 WPAFlags = 1 << (iota - 1)
	FlagPairWEP104
	FlagPairTKIP
	FlagPairCCMP
	FlagGroupWEP40
	FlagGroupWEP104
	FlagGroupTKIP
	FlagGroupCCMP
	FlagKeyMgmtPSK
	FlagKeyMgmt8021X
)

// APCapability is an immutable record of one access point's advertised
// identity and security capabilities. Every field is supplied by the
// caller (typically a scan result or beacon decode); APCapability itself
// performs no I/O.
type APCapability struct {
	SSID     string
	BSSID    string
	Mode     Mode
	Privacy  bool // capability-info Privacy bit: the AP requires some form of keying
	WPAFlags WPAFlags
	RSNFlags WPAFlags
}

// HasWPA reports whether the AP advertised a WPA (not RSN) information
// element.
func (a APCapability) HasWPA() bool { return a.WPAFlags != FlagNone }

// HasRSN reports whether the AP advertised an RSN information element.
func (a APCapability) HasRSN() bool { return a.RSNFlags != FlagNone }

// IsWPACapable reports whether the AP advertises WPA or RSN security at
// all, i.e. is not a plain WEP/open AP.
func (a APCapability) IsWPACapable() bool { return a.HasWPA() || a.HasRSN() }

// class is the three-way security classification Complete dispatches on.
type class int

const (
	classOpen class = iota
	classWEPOrLEAPOrDynWEP
	classWPA
)

func classify(ap APCapability) class {
	switch {
	case ap.IsWPACapable():
		return classWPA
	case ap.Privacy:
		return classWEPOrLEAPOrDynWEP
	default:
		return classOpen
	}
}
