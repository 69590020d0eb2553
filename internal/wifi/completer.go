package wifi

import (
	"github.com/SISW-MOM/NetworkManager/internal/connection"
)

// KeyMgmt identifies the wireless-security key-management scheme a
// WirelessSecuritySetting requests or has been completed to.
type KeyMgmt string

const (
	KeyMgmtStaticWEP KeyMgmt = "none"
	KeyMgmtIEEE8021X KeyMgmt = "ieee8021x" // LEAP or Dynamic WEP, disambiguated by leap-username
	KeyMgmtWPAPSK    KeyMgmt = "wpa-psk"
	KeyMgmtWPAEAP    KeyMgmt = "wpa-eap"
)

// AuthAlg identifies the 802.11 authentication algorithm a
// WirelessSecuritySetting requests.
type AuthAlg string

const (
	AuthAlgOpen   AuthAlg = "open"
	AuthAlgShared AuthAlg = "shared"
	AuthAlgLEAP   AuthAlg = "leap"
)

// WirelessSetting is the 802-11-wireless setting-group variant: SSID,
// BSSID, and mode, the three fields Complete always fills in regardless of
// the AP's security class.
type WirelessSetting struct {
	SSID  string
	BSSID string // empty unless lockBSSID was requested
	Mode  string // "infrastructure" or "adhoc"
}

func (s *WirelessSetting) GroupName() string { return connection.GroupWireless }

func (s *WirelessSetting) Verify(*connection.Connection) error { return nil }

func (s *WirelessSetting) Equal(other connection.Setting, _ connection.CompareFlags) bool {
	o, ok := other.(*WirelessSetting)
	if !ok || o == nil {
		return false
	}
	return *s == *o
}

func modeString(m Mode) string {
	if m == ModeAdhoc {
		return "adhoc"
	}
	return "infrastructure"
}

// WirelessSecuritySetting is the 802-11-wireless-security setting-group
// variant. Complete fills in Pairwise/Group only when it completes to
// Dynamic WEP, overwriting whatever the caller supplied; on every other
// path caller-supplied values are kept as they are.
type WirelessSecuritySetting struct {
	KeyMgmt      KeyMgmt
	AuthAlg      AuthAlg
	WEPKey0      string
	LEAPUsername string
	LEAPPassword string
	PSK          string
	Pairwise     []string
	Group        []string
}

func (s *WirelessSecuritySetting) GroupName() string { return connection.GroupWirelessSecurity }

func (s *WirelessSecuritySetting) Verify(*connection.Connection) error { return nil }

func (s *WirelessSecuritySetting) Equal(other connection.Setting, _ connection.CompareFlags) bool {
	o, ok := other.(*WirelessSecuritySetting)
	if !ok || o == nil {
		return false
	}
	if s.KeyMgmt != o.KeyMgmt || s.AuthAlg != o.AuthAlg || s.WEPKey0 != o.WEPKey0 ||
		s.LEAPUsername != o.LEAPUsername || s.LEAPPassword != o.LEAPPassword || s.PSK != o.PSK {
		return false
	}
	return stringsEqual(s.Pairwise, o.Pairwise) && stringsEqual(s.Group, o.Group)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EAPSetting is the 802-1x setting-group variant: the minimum detail
// Complete needs to tell a well-formed 802.1x block from an empty one.
type EAPSetting struct {
	EAP        string
	Identity   string
	Phase2Auth string
}

func (s *EAPSetting) GroupName() string { return connection.Group8021X }

func (s *EAPSetting) Verify(*connection.Connection) error { return nil }

func (s *EAPSetting) Equal(other connection.Setting, _ connection.CompareFlags) bool {
	o, ok := other.(*EAPSetting)
	if !ok || o == nil {
		return false
	}
	return *s == *o
}

// Complete reconciles a connection against an access point: given the AP
// the connection is being activated against and whether BSSID pinning was
// requested, it fills in the 802-11-wireless setting and reconciles the
// 802-11-wireless-security (and,
// where relevant, 802-1x) settings with what the AP actually advertises. It
// mutates conn in place, and returns a *connection.CoreError (kind one of
// WirelessSecurityInvalidProperty, WirelessSecurityLeapRequiresUsername,
// EapMissingProperty) if the user-supplied configuration cannot be
// reconciled with the AP's class. Complete is pure: conn is its only output
// besides the returned error.
func Complete(ap APCapability, lockBSSID bool, conn *connection.Connection) error {
	wireless := &WirelessSetting{SSID: ap.SSID, Mode: modeString(ap.Mode)}
	if lockBSSID {
		wireless.BSSID = ap.BSSID
	}
	conn.Set(wireless)

	existing, hasSec := conn.Get(connection.GroupWirelessSecurity)
	var sec *WirelessSecuritySetting
	if hasSec {
		s, ok := existing.(*WirelessSecuritySetting)
		if !ok {
			return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
				"existing 802-11-wireless-security setting has the wrong type")
		}
		sec = s
	}
	_, hasEAP := conn.Get(connection.Group8021X)

	switch classify(ap) {
	case classOpen:
		return completeOpen(sec, hasEAP, conn)
	case classWEPOrLEAPOrDynWEP:
		return completePrivacy(sec, hasSec, hasEAP, conn)
	default:
		return completeWPA(sec, hasSec, conn)
	}
}

func completeOpen(sec *WirelessSecuritySetting, hasEAP bool, conn *connection.Connection) error {
	if sec != nil {
		return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
			"an open access point carries no security")
	}
	if hasEAP {
		return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
			"an open access point carries no 802.1x configuration")
	}
	conn.Remove(connection.GroupWirelessSecurity)
	conn.Remove(connection.Group8021X)
	return nil
}

// completePrivacy reconciles against a Privacy-bit-only AP: static WEP,
// LEAP, or Dynamic WEP are all acceptable, plain open or WPA are not.
func completePrivacy(sec *WirelessSecuritySetting, hasSec, hasEAP bool, conn *connection.Connection) error {
	if !hasSec {
		conn.Set(&WirelessSecuritySetting{KeyMgmt: KeyMgmtStaticWEP})
		return nil
	}

	// An absent key-mgmt alongside an 802.1x block means Dynamic WEP: treat
	// it the same as an explicit key-mgmt=ieee8021x.
	if sec.KeyMgmt == "" && hasEAP {
		sec.KeyMgmt = KeyMgmtIEEE8021X
	}

	switch sec.KeyMgmt {
	case KeyMgmtStaticWEP:
		conn.Set(sec)
		return nil

	case KeyMgmtIEEE8021X:
		if sec.LEAPUsername != "" {
			if hasEAP {
				return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
					"leap requires 802.1x to be absent")
			}
			sec.AuthAlg = AuthAlgLEAP
			conn.Set(sec)
			return nil
		}
		if sec.AuthAlg == AuthAlgLEAP && !hasEAP {
			return connection.NewWirelessSecurityError(connection.KindWirelessSecurityLeapRequiresUsername,
				"leap requires a non-empty leap-username")
		}

		// Dynamic WEP.
		if sec.AuthAlg == AuthAlgShared {
			return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
				"dynamic WEP requires auth-alg=open")
		}
		if !hasEAP {
			return connection.NewWirelessSecurityError(connection.KindEAPMissingProperty,
				"dynamic WEP requires an 802.1x setting")
		}
		eap, _ := conn.Get(connection.Group8021X)
		e, ok := eap.(*EAPSetting)
		if !ok || e.EAP == "" {
			return connection.NewWirelessSecurityError(connection.KindEAPMissingProperty,
				"802.1x setting is missing a required eap method")
		}
		sec.AuthAlg = AuthAlgOpen
		sec.Pairwise = []string{"wep40", "wep104"}
		sec.Group = []string{"wep40", "wep104"}
		conn.Set(sec)
		return nil

	default:
		return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
			"key-mgmt %q is not valid for a WEP/LEAP/Dynamic-WEP access point", sec.KeyMgmt)
	}
}

// completeWPA reconciles against an AP advertising WPA or RSN: wpa-psk or
// wpa-eap only.
func completeWPA(sec *WirelessSecuritySetting, hasSec bool, conn *connection.Connection) error {
	if !hasSec {
		conn.Set(&WirelessSecuritySetting{KeyMgmt: KeyMgmtWPAPSK, AuthAlg: AuthAlgOpen})
		return nil
	}

	if sec.KeyMgmt == KeyMgmtStaticWEP || sec.KeyMgmt == KeyMgmtIEEE8021X {
		return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
			"key-mgmt %q is not valid for a WPA access point", sec.KeyMgmt)
	}
	if sec.AuthAlg == AuthAlgShared || sec.AuthAlg == AuthAlgLEAP {
		return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
			"auth-alg %q is not valid for a WPA access point", sec.AuthAlg)
	}
	if sec.AuthAlg == "" {
		sec.AuthAlg = AuthAlgOpen
	} else if sec.AuthAlg != AuthAlgOpen {
		return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
			"auth-alg %q is not valid for a WPA access point", sec.AuthAlg)
	}

	switch sec.KeyMgmt {
	case KeyMgmtWPAPSK:
		if sec.PSK == "" {
			return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
				"wpa-psk requires a non-empty psk")
		}
	case KeyMgmtWPAEAP:
		eap, ok := conn.Get(connection.Group8021X)
		if !ok {
			return connection.NewWirelessSecurityError(connection.KindEAPMissingProperty,
				"wpa-eap requires an 802.1x setting")
		}
		if e, ok := eap.(*EAPSetting); !ok || e.EAP == "" {
			return connection.NewWirelessSecurityError(connection.KindEAPMissingProperty,
				"802.1x setting is missing a required eap method")
		}
	default:
		return connection.NewWirelessSecurityError(connection.KindWirelessSecurityInvalidProperty,
			"key-mgmt %q is not valid for a WPA access point", sec.KeyMgmt)
	}

	conn.Set(sec)
	return nil
}
