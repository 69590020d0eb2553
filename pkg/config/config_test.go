package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"

	"github.com/SISW-MOM/NetworkManager/internal/bond"
	"github.com/SISW-MOM/NetworkManager/internal/wifi"
)

const sampleYAML = `
connections:
  - name: backup-bond
    bond:
      options:
        mode: active-backup
        primary: eth0
        miimon: "100"
access_points:
  - ssid: corp
    bssid: "aa:bb:cc:dd:ee:ff"
    mode: infrastructure
    privacy: true
    rsn_flags: [pair_ccmp, keymgmt_psk]
scenarios:
  - name: backup-over-corp
    connection: backup-bond
    access_point: corp
    lock_bssid: true
`

func decodeSample(t *testing.T) *Scenario {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(sampleYAML)); err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	scenario, err := decode(v)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return scenario
}

func TestDecodeConnectionBondOptions(t *testing.T) {
	scenario := decodeSample(t)
	conn, ok := scenario.Connections["backup-bond"]
	if !ok {
		t.Fatal("expected a connection named backup-bond")
	}
	mode, ok := conn.Bond.Option(bond.OptionMode)
	if !ok || mode != string(bond.ModeActiveBackup) {
		t.Fatalf("mode = %q, ok=%v, want active-backup", mode, ok)
	}
	primary, ok := conn.Bond.Option(bond.OptionPrimary)
	if !ok || primary != "eth0" {
		t.Fatalf("primary = %q, ok=%v, want eth0", primary, ok)
	}
}

func TestDecodeAccessPointFlags(t *testing.T) {
	scenario := decodeSample(t)
	ap, ok := scenario.AccessPoints["corp"]
	if !ok {
		t.Fatal("expected an access point named corp")
	}
	want := wifi.FlagPairCCMP | wifi.FlagKeyMgmtPSK
	if ap.RSNFlags != want {
		t.Fatalf("RSNFlags = %v, want %v", ap.RSNFlags, want)
	}
	if !ap.HasRSN() {
		t.Error("HasRSN() should be true")
	}
	if !ap.Privacy {
		t.Error("Privacy should be true")
	}
}

func TestDecodeScenarioRuns(t *testing.T) {
	scenario := decodeSample(t)
	if len(scenario.Runs) != 1 {
		t.Fatalf("Runs = %v, want 1 entry", scenario.Runs)
	}
	run := scenario.Runs[0]
	if run.Connection != "backup-bond" || run.AccessPoint != "corp" || !run.LockBSSID {
		t.Fatalf("run = %+v, want connection=backup-bond access_point=corp lock_bssid=true", run)
	}
}

func TestDecodeRejectsUnknownFlagName(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.ReadConfig(bytes.NewBufferString(`
access_points:
  - ssid: bogus
    wpa_flags: [not_a_real_flag]
`))
	if _, err := decode(v); err == nil {
		t.Fatal("an unrecognised flag name should fail decoding")
	}
}
