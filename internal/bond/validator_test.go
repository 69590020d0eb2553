package bond

import "testing"

func strptr(s string) *string { return &s }

func TestValidateOptionInt(t *testing.T) {
	if !ValidateOption(OptionMiimon, strptr("100")) {
		t.Error("miimon=100 should validate")
	}
	if ValidateOption(OptionMiimon, strptr("-1")) {
		t.Error("miimon=-1 should not validate")
	}
	if ValidateOption(OptionMiimon, strptr("1.5")) {
		t.Error("miimon=1.5 should not validate")
	}
	if ValidateOption(OptionADActorSysPrio, strptr("0")) {
		t.Error("ad_actor_sys_prio=0 is below Min=1 and should not validate")
	}
	if !ValidateOption(OptionADActorSysPrio, strptr("65535")) {
		t.Error("ad_actor_sys_prio=65535 is the Max and should validate")
	}
}

func TestValidateOptionNameOnly(t *testing.T) {
	if !ValidateOption(OptionMode, nil) {
		t.Error("nil value should validate name-only")
	}
	if ValidateOption("not_a_real_option", nil) {
		t.Error("unknown option name should never validate")
	}
}

func TestValidateOptionIntOrList(t *testing.T) {
	if !ValidateOption(OptionMode, strptr("balance-rr")) {
		t.Error("mode=balance-rr should validate")
	}
	if !ValidateOption(OptionMode, strptr("0")) {
		t.Error("mode=0 should validate (decimal index form)")
	}
	if ValidateOption(OptionMode, strptr("7")) {
		t.Error("mode=7 is out of range and should not validate")
	}
}

func TestValidateOptionIPList(t *testing.T) {
	if !ValidateOption(OptionARPIPTarget, strptr("192.168.1.1,192.168.1.2")) {
		t.Error("a comma-separated list of IPv4 dotted quads should validate")
	}
	if ValidateOption(OptionARPIPTarget, strptr("192.168.1.1,")) {
		t.Error("a trailing comma (empty component) should not validate")
	}
	if ValidateOption(OptionARPIPTarget, strptr("")) {
		t.Error("empty value should not validate")
	}
	if ValidateOption(OptionARPIPTarget, strptr("::1")) {
		t.Error("an IPv6 address should not validate")
	}
	if ValidateOption(OptionARPIPTarget, strptr("999.1.1.1")) {
		t.Error("an out-of-range octet should not validate")
	}
}

func TestValidateOptionMAC(t *testing.T) {
	if !ValidateOption(OptionADActorSystem, strptr("00:11:22:33:44:55")) {
		t.Error("a canonical MAC should validate")
	}
	if ValidateOption(OptionADActorSystem, strptr("00:11:22:33:44")) {
		t.Error("a 5-octet MAC should not validate")
	}
	if ValidateOption(OptionADActorSystem, strptr("gg:11:22:33:44:55")) {
		t.Error("a non-hex octet should not validate")
	}
}

func TestValidateOptionIfname(t *testing.T) {
	if !ValidateOption(OptionPrimary, strptr("eth0")) {
		t.Error("eth0 should validate as an ifname")
	}
	if ValidateOption(OptionPrimary, strptr("")) {
		t.Error("empty ifname should not validate")
	}
	if ValidateOption(OptionPrimary, strptr(".")) {
		t.Error("'.' should not validate as an ifname")
	}
	if ValidateOption(OptionPrimary, strptr("..")) {
		t.Error("'..' should not validate as an ifname")
	}
	if ValidateOption(OptionPrimary, strptr("eth/0")) {
		t.Error("a name containing '/' should not validate")
	}
	if ValidateOption(OptionPrimary, strptr("eth 0")) {
		t.Error("a name containing whitespace should not validate")
	}
	long := make([]byte, 16)
	for i := range long {
		long[i] = 'a'
	}
	if ValidateOption(OptionPrimary, strptr(string(long))) {
		t.Error("a 16-byte name should exceed IFNAMSIZ and not validate")
	}
}
