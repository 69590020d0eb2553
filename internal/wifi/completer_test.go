package wifi

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/SISW-MOM/NetworkManager/internal/connection"
)

func wsecKind(t *testing.T, err error) connection.Kind {
	t.Helper()
	var ce *connection.CoreError
	if !errors.As(err, &ce) {
		t.Fatalf("error %v is not a *connection.CoreError", err)
	}
	return ce.Kind
}

func TestCompleteOpenAPFromEmpty(t *testing.T) {
	ap := APCapability{SSID: "blahblah", BSSID: "01:02:03:04:05:06", Mode: ModeInfra}
	conn := connection.New()
	if err := Complete(ap, false, conn); err != nil {
		t.Fatalf("Complete on an open AP with empty input should succeed, got %v", err)
	}
	w, ok := conn.Get(connection.GroupWireless)
	if !ok {
		t.Fatal("a wireless setting must always be synthesized")
	}
	ws := w.(*WirelessSetting)
	if ws.SSID != "blahblah" || ws.Mode != "infrastructure" || ws.BSSID != "" {
		t.Fatalf("wireless setting = %+v, want ssid=blahblah mode=infrastructure bssid=empty", ws)
	}
	if _, ok := conn.Get(connection.GroupWirelessSecurity); ok {
		t.Fatal("an open AP must not produce a wireless-security setting")
	}
}

func TestCompleteWEPAPEmptyInput(t *testing.T) {
	ap := APCapability{SSID: "blahblah", BSSID: "01:02:03:04:05:06", Mode: ModeInfra, Privacy: true}
	conn := connection.New()
	if err := Complete(ap, false, conn); err != nil {
		t.Fatalf("Complete on a WEP AP with empty input should succeed, got %v", err)
	}
	w, _ := conn.Get(connection.GroupWireless)
	if w.(*WirelessSetting).BSSID != "" {
		t.Fatal("bssid must stay unset when lockBSSID is false")
	}
	sec, ok := conn.Get(connection.GroupWirelessSecurity)
	if !ok {
		t.Fatal("a WEP AP with no user security must synthesize one")
	}
	if sec.(*WirelessSecuritySetting).KeyMgmt != KeyMgmtStaticWEP {
		t.Fatalf("key-mgmt = %q, want %q", sec.(*WirelessSecuritySetting).KeyMgmt, KeyMgmtStaticWEP)
	}
}

func TestCompleteDynamicWEP(t *testing.T) {
	ap := APCapability{SSID: "corp", BSSID: "aa:bb:cc:dd:ee:ff", Mode: ModeInfra, Privacy: true}
	conn := connection.New()
	conn.Set(&WirelessSecuritySetting{KeyMgmt: KeyMgmtIEEE8021X, AuthAlg: AuthAlgOpen})
	conn.Set(&EAPSetting{EAP: "peap", Identity: "Bill Smith", Phase2Auth: "mschapv2"})

	if err := Complete(ap, false, conn); err != nil {
		t.Fatalf("dynamic WEP completion should succeed, got %v", err)
	}
	sec, _ := conn.Get(connection.GroupWirelessSecurity)
	ws := sec.(*WirelessSecuritySetting)
	want := []string{"wep40", "wep104"}
	if diff := cmp.Diff(want, ws.Pairwise); diff != "" {
		t.Errorf("pairwise mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, ws.Group); diff != "" {
		t.Errorf("group mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteWPAAPWithLEAPRejected(t *testing.T) {
	ap := APCapability{
		SSID: "corp", BSSID: "aa:bb:cc:dd:ee:ff", Mode: ModeInfra, Privacy: true,
		WPAFlags: FlagPairTKIP | FlagKeyMgmtPSK,
	}
	conn := connection.New()
	conn.Set(&WirelessSecuritySetting{KeyMgmt: KeyMgmtIEEE8021X, LEAPUsername: "Bill Smith"})

	err := Complete(ap, false, conn)
	if err == nil {
		t.Fatal("LEAP against a WPA AP must be rejected")
	}
	if got := wsecKind(t, err); got != connection.KindWirelessSecurityInvalidProperty {
		t.Fatalf("kind = %v, want KindWirelessSecurityInvalidProperty", got)
	}
}

func TestCompleteLockBSSID(t *testing.T) {
	ap := APCapability{SSID: "blahblah", BSSID: "01:02:03:04:05:06", Mode: ModeInfra}
	conn := connection.New()
	if err := Complete(ap, true, conn); err != nil {
		t.Fatalf("Complete should succeed, got %v", err)
	}
	w, _ := conn.Get(connection.GroupWireless)
	if w.(*WirelessSetting).BSSID != ap.BSSID {
		t.Fatalf("bssid = %q, want %q", w.(*WirelessSetting).BSSID, ap.BSSID)
	}
}

func TestCompleteWPADefaultSynthesis(t *testing.T) {
	ap := APCapability{SSID: "corp", Mode: ModeInfra, RSNFlags: FlagPairCCMP | FlagKeyMgmtPSK}
	conn := connection.New()
	if err := Complete(ap, false, conn); err != nil {
		t.Fatalf("Complete on a WPA AP with empty input should succeed, got %v", err)
	}
	sec, ok := conn.Get(connection.GroupWirelessSecurity)
	if !ok {
		t.Fatal("a WPA AP with no user security must synthesize one")
	}
	ws := sec.(*WirelessSecuritySetting)
	if ws.KeyMgmt != KeyMgmtWPAPSK || ws.AuthAlg != AuthAlgOpen {
		t.Fatalf("synthesized security = %+v, want key-mgmt=wpa-psk auth-alg=open", ws)
	}
}

func TestCompleteIdempotent(t *testing.T) {
	ap := APCapability{SSID: "corp", Mode: ModeInfra, RSNFlags: FlagPairCCMP | FlagKeyMgmtPSK}
	first := connection.New()
	if err := Complete(ap, false, first); err != nil {
		t.Fatalf("first Complete failed: %v", err)
	}
	if sec, ok := first.Get(connection.GroupWirelessSecurity); ok {
		sec.(*WirelessSecuritySetting).PSK = "supersecret"
	}

	second := connection.New()
	w, _ := first.Get(connection.GroupWireless)
	sec, _ := first.Get(connection.GroupWirelessSecurity)
	wCopy := *w.(*WirelessSetting)
	secCopy := *sec.(*WirelessSecuritySetting)
	second.Set(&wCopy)
	second.Set(&secCopy)

	if err := Complete(ap, false, second); err != nil {
		t.Fatalf("re-applying Complete to its own output failed: %v", err)
	}
	if !first.Equal(second, connection.CompareExact) {
		t.Fatal("Complete should be idempotent on its own successful output")
	}
}
