package bond

import "testing"

func TestValidOptionsHas27Entries(t *testing.T) {
	got := ValidOptions()
	if len(got) != 27 {
		t.Fatalf("ValidOptions() returned %d entries, want 27", len(got))
	}
	seen := make(map[string]bool, len(got))
	for _, name := range got {
		if seen[name] {
			t.Fatalf("ValidOptions() contains duplicate %q", name)
		}
		seen[name] = true
		if _, ok := Lookup(name); !ok {
			t.Fatalf("ValidOptions() contains %q which Lookup cannot find", name)
		}
	}
}

func TestParseModeAcceptsStringAndIndex(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"balance-rr", ModeRoundRobin},
		{"0", ModeRoundRobin},
		{"active-backup", ModeActiveBackup},
		{"1", ModeActiveBackup},
		{"802.3ad", Mode8023AD},
		{"4", Mode8023AD},
		{"balance-alb", ModeALB},
		{"6", ModeALB},
	}
	for _, c := range cases {
		got, ok := ParseMode(c.in)
		if !ok || got != c.want {
			t.Errorf("ParseMode(%q) = (%q, %v), want (%q, true)", c.in, got, ok, c.want)
		}
	}
}

func TestParseModeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "bogus", "7", "-1", "balance"} {
		if _, ok := ParseMode(in); ok {
			t.Errorf("ParseMode(%q) unexpectedly succeeded", in)
		}
	}
}

func TestModeIndexRoundTrip(t *testing.T) {
	for idx := 0; idx < 7; idx++ {
		m, ok := ModeFromIndex(idx)
		if !ok {
			t.Fatalf("ModeFromIndex(%d) failed", idx)
		}
		got, ok := ModeToIndex(m)
		if !ok || got != idx {
			t.Errorf("ModeToIndex(%q) = (%d, %v), want (%d, true)", m, got, ok, idx)
		}
	}
}

func TestSupportedInModeMatchesUnsupportedTable(t *testing.T) {
	if SupportedInMode(OptionPrimary, ModeRoundRobin) {
		t.Error("primary should not be supported under balance-rr")
	}
	if !SupportedInMode(OptionPrimary, ModeActiveBackup) {
		t.Error("primary should be supported under active-backup")
	}
	if SupportedInMode(OptionLACPRate, ModeRoundRobin) {
		t.Error("lacp_rate should not be supported under balance-rr")
	}
	if !SupportedInMode(OptionLACPRate, Mode8023AD) {
		t.Error("lacp_rate should be supported under 802.3ad")
	}
	if !SupportedInMode(OptionMiimon, ModeRoundRobin) {
		t.Error("miimon has no per-mode restriction and should be supported everywhere")
	}
}
