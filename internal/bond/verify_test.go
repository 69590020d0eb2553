package bond

import (
	"errors"
	"testing"

	"github.com/SISW-MOM/NetworkManager/internal/connection"
)

func kindOf(t *testing.T, err error) connection.Kind {
	t.Helper()
	var ce *connection.CoreError
	if !errors.As(err, &ce) {
		t.Fatalf("error %v is not a *connection.CoreError", err)
	}
	return ce.Kind
}

func TestVerifyMissingMode(t *testing.T) {
	s := NewSetting()
	err := s.Verify(connection.New())
	if err == nil {
		t.Fatal("a setting with no mode must fail verification")
	}
	if got := kindOf(t, err); got != connection.KindMissingMode {
		t.Fatalf("kind = %v, want KindMissingMode", got)
	}
}

func TestVerifyMonitorExclusivityFatal(t *testing.T) {
	// miimon and arp_interval both positive can only be constructed via the
	// bulk loader, since AddOption enforces the exclusion as a side effect.
	s := NewSetting()
	ok := s.SetOptionsRaw(map[string]string{
		OptionMode:        string(ModeActiveBackup),
		OptionMiimon:      "100",
		OptionARPInterval: "50",
		OptionARPIPTarget: "192.168.1.1",
	})
	if !ok {
		t.Fatal("SetOptionsRaw should accept individually-valid entries")
	}
	err := s.Verify(connection.New())
	if err == nil {
		t.Fatal("miimon and arp_interval both positive must fail verification")
	}
	if got := kindOf(t, err); got != connection.KindIncompatibleOptions {
		t.Fatalf("kind = %v, want KindIncompatibleOptions", got)
	}
}

func TestVerifyPrimaryRequiresActiveBackup(t *testing.T) {
	// primary is only meaningful under active-backup.
	s := NewSetting()
	s.AddOption(OptionMode, string(ModeRoundRobin))
	s.AddOption(OptionPrimary, "eth0")
	err := s.Verify(connection.New())
	if err == nil {
		t.Fatal("primary under balance-rr must fail verification")
	}
	if got := kindOf(t, err); got != connection.KindOptionRequiresOther {
		t.Fatalf("kind = %v, want KindOptionRequiresOther", got)
	}
}

func TestVerifyPrimaryValidUnderActiveBackup(t *testing.T) {
	s := NewSetting()
	s.AddOption(OptionMode, string(ModeActiveBackup))
	s.AddOption(OptionPrimary, "eth0")
	if err := s.Verify(connection.New()); err != nil {
		t.Fatalf("primary under active-backup should verify cleanly, got %v", err)
	}
}

func TestVerifyModeTLBRejectsARPInterval(t *testing.T) {
	s := NewSetting()
	s.SetOptionsRaw(map[string]string{
		OptionMode:        string(ModeTLB),
		OptionARPInterval: "50",
		OptionARPIPTarget: "192.168.1.1",
	})
	err := s.Verify(connection.New())
	if err == nil {
		t.Fatal("arp_interval under balance-tlb must fail verification")
	}
	if got := kindOf(t, err); got != connection.KindIncompatibleOptions {
		t.Fatalf("kind = %v, want KindIncompatibleOptions", got)
	}
}

func TestVerifyDelayRequiresMiimon(t *testing.T) {
	s := NewSetting()
	s.SetOptionsRaw(map[string]string{
		OptionMode:    string(ModeActiveBackup),
		OptionMiimon:  "0",
		OptionUpDelay: "200",
	})
	err := s.Verify(connection.New())
	if err == nil {
		t.Fatal("updelay without an enabled miimon must fail verification")
	}
	if got := kindOf(t, err); got != connection.KindOptionRequiresOther {
		t.Fatalf("kind = %v, want KindOptionRequiresOther", got)
	}
}

func TestVerifyARPIntervalRequiresTarget(t *testing.T) {
	s := NewSetting()
	s.SetOptionsRaw(map[string]string{
		OptionMode:        string(ModeActiveBackup),
		OptionARPInterval: "50",
	})
	err := s.Verify(connection.New())
	if err == nil {
		t.Fatal("arp_interval without arp_ip_target must fail verification")
	}
	if got := kindOf(t, err); got != connection.KindOptionRequiresOther {
		t.Fatalf("kind = %v, want KindOptionRequiresOther", got)
	}
}

func TestVerifyGratuitousARPTwinMismatch(t *testing.T) {
	s := NewSetting()
	s.SetOptionsRaw(map[string]string{
		OptionMode:       string(ModeActiveBackup),
		OptionNumGratARP: "3",
		OptionNumUnsolNA: "5",
	})
	err := s.Verify(connection.New())
	if err == nil {
		t.Fatal("mismatched num_grat_arp/num_unsol_na must fail verification")
	}
	if got := kindOf(t, err); got != connection.KindIncompatibleOptions {
		t.Fatalf("kind = %v, want KindIncompatibleOptions", got)
	}
}

func TestVerifyInfiniBandRequiresActiveBackup(t *testing.T) {
	s := NewSetting()
	s.AddOption(OptionMode, string(ModeRoundRobin))
	conn := connection.New()
	conn.Set(connection.InfiniBandSetting{})
	err := s.Verify(conn)
	if err == nil {
		t.Fatal("a non active-backup mode alongside infiniband must fail verification")
	}
	if got := kindOf(t, err); got != connection.KindIncompatibleOptions {
		t.Fatalf("kind = %v, want KindIncompatibleOptions", got)
	}
}

func TestVerifyModeSpellingNormalizable(t *testing.T) {
	s := NewSetting()
	s.AddOption(OptionMode, "1") // decimal index form for active-backup
	err := s.Verify(connection.New())
	if err == nil {
		t.Fatal("a non-canonical mode spelling must be reported as normalizable")
	}
	if !connection.IsNormalizable(err) {
		t.Fatalf("expected a normalizable error, got %v", err)
	}
}

func TestVerifyPerModeOptionCullingNormalizable(t *testing.T) {
	// lacp_rate left at its default value passes the LACP rate scope check
	// (step 11, which only rejects a non-default value outright) but is
	// still unsupported outside 802.3ad, so it falls through to the
	// per-mode culling step.
	s := NewSetting()
	s.SetOptionsRaw(map[string]string{
		OptionMode:     string(ModeRoundRobin),
		OptionLACPRate: "slow",
	})
	err := s.Verify(connection.New())
	if err == nil {
		t.Fatal("lacp_rate under balance-rr must be reported as normalizable")
	}
	if !connection.IsNormalizable(err) {
		t.Fatalf("expected a normalizable error, got %v", err)
	}
}

func TestVerifyCleanSettingPasses(t *testing.T) {
	s := NewSetting()
	s.AddOption(OptionMode, string(ModeActiveBackup))
	s.AddOption(OptionPrimary, "eth0")
	s.AddOption(OptionMiimon, "100")
	if err := s.Verify(connection.New()); err != nil {
		t.Fatalf("a clean active-backup setting should verify with no error, got %v", err)
	}
}
