// Package bondplan translates a verified bond.Setting into a *netlink.Bond
// link description. Plan is a pure translator: it builds the same
// netlink.Bond value that would be fed into netlink.LinkAdd, but never
// calls LinkAdd, LinkModify, or any other call that touches a socket or
// the kernel. Turning a plan into a live interface is a host
// responsibility this package does not take on.
package bondplan

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/vishvananda/netlink"

	"github.com/SISW-MOM/NetworkManager/internal/bond"
)

// Plan builds the netlink link description for setting under the given
// interface name. setting must have already passed bond.Setting.Verify
// with a nil (non-normalizable) result; Plan does not re-run verification
// and will propagate whatever garbage an unverified setting contains.
func Plan(setting *bond.Setting, ifaceName string) (*netlink.Bond, error) {
	link := netlink.NewLinkBond(netlink.LinkAttrs{Name: ifaceName})

	modeRaw, ok := setting.Option(bond.OptionMode)
	if !ok {
		return nil, fmt.Errorf("bondplan: setting has no mode option")
	}
	mode, ok := bond.ParseMode(modeRaw)
	if !ok {
		return nil, fmt.Errorf("bondplan: %q is not a recognised bond mode", modeRaw)
	}
	nlMode, err := modeToNetlink(mode)
	if err != nil {
		return nil, err
	}
	link.Mode = nlMode

	link.MiimonInterval = intOption(setting, bond.OptionMiimon)
	link.UpDelay = intOption(setting, bond.OptionUpDelay)
	link.DownDelay = intOption(setting, bond.OptionDownDelay)
	link.ArpInterval = intOption(setting, bond.OptionARPInterval)
	link.MinLinks = intOption(setting, bond.OptionMinLinks)
	link.NumPeerNotif = intOption(setting, bond.OptionNumUnsolNA)
	link.NumGratArp = intOption(setting, bond.OptionNumGratARP)

	if v, ok := setting.Option(bond.OptionUseCarrier); ok {
		link.UseCarrier = int(mustUint(v))
	}

	if v, ok := setting.Option(bond.OptionARPIPTarget); ok && v != "" {
		var targets []net.IP
		for _, addr := range strings.Split(v, ",") {
			ip := net.ParseIP(addr)
			if ip == nil {
				return nil, fmt.Errorf("bondplan: %q is not a valid arp_ip_target address", addr)
			}
			targets = append(targets, ip)
		}
		link.ArpIpTargets = targets
	}

	if v, ok := setting.Option(bond.OptionARPValidate); ok {
		link.ArpValidate = arpValidateToNetlink(v)
	}
	if v, ok := setting.Option(bond.OptionARPAllTargets); ok {
		if v == "all" {
			link.ArpAllTargets = netlink.BOND_ARP_ALL_TARGETS_ALL
		} else {
			link.ArpAllTargets = netlink.BOND_ARP_ALL_TARGETS_ANY
		}
	}

	if v, ok := setting.Option(bond.OptionXmitHashPolicy); ok {
		link.XmitHashPolicy = xmitHashPolicyToNetlink(v)
	}
	if v, ok := setting.Option(bond.OptionLACPRate); ok {
		link.LacpRate = lacpRateToNetlink(v)
	}
	if v, ok := setting.Option(bond.OptionADSelect); ok {
		link.AdSelect = adSelectToNetlink(v)
	}
	if v, ok := setting.Option(bond.OptionPrimaryReselect); ok {
		link.PrimaryReselect = primaryReselectToNetlink(v)
	}
	if v, ok := setting.Option(bond.OptionFailOverMAC); ok {
		link.FailOverMac = failOverMacToNetlink(v)
	}
	if v, ok := setting.Option(bond.OptionPrimary); ok {
		link.Primary = v
	}

	return link, nil
}

func intOption(setting *bond.Setting, name string) int {
	v, ok := setting.Option(name)
	if !ok {
		return 0
	}
	return int(mustUint(v))
}

func mustUint(v string) uint64 {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func modeToNetlink(mode bond.Mode) (netlink.BondMode, error) {
	switch mode {
	case bond.ModeRoundRobin:
		return netlink.BOND_MODE_BALANCE_RR, nil
	case bond.ModeActiveBackup:
		return netlink.BOND_MODE_ACTIVE_BACKUP, nil
	case bond.ModeXOR:
		return netlink.BOND_MODE_BALANCE_XOR, nil
	case bond.ModeBroadcast:
		return netlink.BOND_MODE_BROADCAST, nil
	case bond.Mode8023AD:
		return netlink.BOND_MODE_802_3AD, nil
	case bond.ModeTLB:
		return netlink.BOND_MODE_BALANCE_TLB, nil
	case bond.ModeALB:
		return netlink.BOND_MODE_BALANCE_ALB, nil
	default:
		return 0, fmt.Errorf("bondplan: unrecognised mode %q", mode)
	}
}

func xmitHashPolicyToNetlink(policy string) netlink.BondXmitHashPolicy {
	switch policy {
	case "layer3+4":
		return netlink.BOND_XMIT_HASH_POLICY_LAYER3_4
	case "layer2+3":
		return netlink.BOND_XMIT_HASH_POLICY_LAYER2_3
	case "encap2+3":
		return netlink.BOND_XMIT_HASH_POLICY_ENCAP2_3
	case "encap3+4":
		return netlink.BOND_XMIT_HASH_POLICY_ENCAP3_4
	default:
		return netlink.BOND_XMIT_HASH_POLICY_LAYER2
	}
}

func lacpRateToNetlink(rate string) netlink.BondLacpRate {
	if rate == "fast" {
		return netlink.BOND_LACP_RATE_FAST
	}
	return netlink.BOND_LACP_RATE_SLOW
}

func adSelectToNetlink(sel string) netlink.BondAdSelect {
	switch sel {
	case "bandwidth":
		return netlink.BOND_AD_SELECT_BANDWIDTH
	case "count":
		return netlink.BOND_AD_SELECT_COUNT
	default:
		return netlink.BOND_AD_SELECT_STABLE
	}
}

func primaryReselectToNetlink(resel string) netlink.BondPrimaryReselect {
	switch resel {
	case "always":
		return netlink.BOND_PRIMARY_RESELECT_ALWAYS
	case "better":
		return netlink.BOND_PRIMARY_RESELECT_BETTER
	default:
		return netlink.BOND_PRIMARY_RESELECT_FAILURE
	}
}

func failOverMacToNetlink(fom string) netlink.BondFailOverMac {
	switch fom {
	case "active":
		return netlink.BOND_FAIL_OVER_MAC_ACTIVE
	case "follow":
		return netlink.BOND_FAIL_OVER_MAC_FOLLOW
	default:
		return netlink.BOND_FAIL_OVER_MAC_NONE
	}
}

func arpValidateToNetlink(validate string) netlink.BondArpValidate {
	switch validate {
	case "active":
		return netlink.BOND_ARP_VALIDATE_ACTIVE
	case "backup":
		return netlink.BOND_ARP_VALIDATE_BACKUP
	case "all":
		return netlink.BOND_ARP_VALIDATE_ALL
	default:
		return netlink.BOND_ARP_VALIDATE_NONE
	}
}
