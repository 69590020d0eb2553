package wifi

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// microsoftOUI is the vendor-specific information element OUI used by the
// WPA1 (pre-standard) information element: Microsoft's OUI, vendor type 1.
var microsoftOUI = [3]byte{0x00, 0x50, 0xf2}

const wpaVendorType = 1

// ParseBeacon decodes a raw 802.11 beacon or probe-response frame into an
// APCapability. The core decision engines never parse frames themselves,
// but a caller that already has a beacon (e.g. captured off the air, or
// replayed from a pcap fixture) needs a pure, deterministic way to turn it
// into the APCapability the completer consumes. ParseBeacon never performs
// I/O; frame is expected to already be in memory.
func ParseBeacon(frame []byte) (APCapability, error) {
	packet := gopacket.NewPacket(frame, layers.LayerTypeDot11, gopacket.NoCopy)
	if err := packet.ErrorLayer(); err != nil {
		return APCapability{}, err.Error()
	}

	dot11Layer := packet.Layer(layers.LayerTypeDot11)
	if dot11Layer == nil {
		return APCapability{}, errNotDot11
	}
	dot11 := dot11Layer.(*layers.Dot11)

	ap := APCapability{
		BSSID: dot11.Address3.String(),
		Mode:  ModeInfra,
	}

	mgmt := packet.Layer(layers.LayerTypeDot11MgmtBeacon)
	if mgmt == nil {
		mgmt = packet.Layer(layers.LayerTypeDot11MgmtProbeResp)
	}
	if mgmt != nil {
		// The fixed parameters (8-byte timestamp, 2-byte interval, 2-byte
		// capability info) are left undecoded in the layer's contents;
		// gopacket exposes no Capability/Flags field for them.
		body := mgmt.LayerContents()
		if len(body) >= 12 {
			capInfo := uint16(body[10]) | uint16(body[11])<<8
			ap.Privacy = capInfo&0x0010 != 0
		}
	}

	for _, l := range packet.Layers() {
		ie, ok := l.(*layers.Dot11InformationElement)
		if !ok {
			continue
		}
		switch ie.ID {
		case layers.Dot11InformationElementIDSSID:
			ap.SSID = string(ie.Info)
		case layers.Dot11InformationElementIDRSNInfo:
			ap.RSNFlags = decodeRSNOrWPA(ie.Info)
		case layers.Dot11InformationElementIDVendor:
			if isMicrosoftWPA(ie.Info) {
				ap.WPAFlags = decodeRSNOrWPA(ie.Info[4:])
			}
		}
	}

	return ap, nil
}

func isMicrosoftWPA(info []byte) bool {
	return len(info) >= 4 &&
		info[0] == microsoftOUI[0] && info[1] == microsoftOUI[1] && info[2] == microsoftOUI[2] &&
		info[3] == wpaVendorType
}

// decodeRSNOrWPA extracts the pairwise/group cipher suites and AKM suites
// out of an RSN (IE 48) or WPA vendor (IE 221, OUI-and-type already
// stripped) information element body and folds them into a WPAFlags
// bitset. Both elements share the same suite-list layout (version, group
// cipher, pairwise count + list, AKM count + list); this mirrors the
// wpa_supplicant/NetworkManager convention of treating WPA1 as "RSN with a
// different OUI".
func decodeRSNOrWPA(body []byte) WPAFlags {
	var flags WPAFlags
	if len(body) < 2 {
		return flags
	}
	offset := 2 // skip version
	if offset+4 > len(body) {
		return flags
	}
	flags |= cipherFlag(body[offset:offset+4], true)
	offset += 4

	if offset+2 > len(body) {
		return flags
	}
	count := int(body[offset]) | int(body[offset+1])<<8
	offset += 2
	for i := 0; i < count && offset+4 <= len(body); i++ {
		flags |= cipherFlag(body[offset:offset+4], false)
		offset += 4
	}

	if offset+2 > len(body) {
		return flags
	}
	akmCount := int(body[offset]) | int(body[offset+1])<<8
	offset += 2
	for i := 0; i < akmCount && offset+4 <= len(body); i++ {
		suite := body[offset+3]
		switch suite {
		case 1: // 802.1X
			flags |= FlagKeyMgmt8021X
		case 2: // PSK
			flags |= FlagKeyMgmtPSK
		}
		offset += 4
	}

	return flags
}

func cipherFlag(suite []byte, group bool) WPAFlags {
	switch suite[3] {
	case 1: // WEP-40
		if group {
			return FlagGroupWEP40
		}
		return FlagPairWEP40
	case 2: // TKIP
		if group {
			return FlagGroupTKIP
		}
		return FlagPairTKIP
	case 4: // CCMP
		if group {
			return FlagGroupCCMP
		}
		return FlagPairCCMP
	case 5: // WEP-104
		if group {
			return FlagGroupWEP104
		}
		return FlagPairWEP104
	default:
		return FlagNone
	}
}

type beaconError string

func (e beaconError) Error() string { return string(e) }

const errNotDot11 = beaconError("wifi: frame has no 802.11 MAC header")
