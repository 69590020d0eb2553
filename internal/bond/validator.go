package bond

import (
	"net"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// parseUint parses s as an unsigned decimal integer with no tolerance for
// signs, whitespace, or non-digit bytes: every byte must be '0'..'9',
// mirroring _nm_utils_ascii_str_to_uint64.
func parseUint(s string) (uint64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseUint(s, 10, 64)
}

// ValidateOption checks whether name is a recognised option and, if value
// is non-nil, whether value is grammatically valid for it. A nil value
// validates the name only.
func ValidateOption(name string, value *string) bool {
	meta, ok := Lookup(name)
	if !ok {
		return false
	}
	if value == nil {
		return true
	}
	v := *value
	switch meta.Kind {
	case KindInt:
		return validateInt(v, meta)
	case KindIntOrList:
		return validateInt(v, meta) || validateList(v, meta)
	case KindList:
		return validateList(v, meta)
	case KindIPList:
		return validateIPList(v)
	case KindMAC:
		return validateMAC(v)
	case KindIfname:
		return validateIfname(v)
	default:
		return false
	}
}

func validateInt(value string, meta Meta) bool {
	n, err := parseUint(value)
	if err != nil {
		return false
	}
	return n >= meta.Min && n <= meta.Max
}

func validateList(value string, meta Meta) bool {
	for _, candidate := range meta.Enum {
		if string(candidate) == value {
			return true
		}
	}
	return false
}

// validateIPList accepts a comma-separated list of IPv4 dotted-quads, with
// no tolerance for empty components (a trailing comma is rejected).
func validateIPList(value string) bool {
	if value == "" {
		return false
	}
	for _, part := range strings.Split(value, ",") {
		if part == "" {
			return false
		}
		if !isIPv4DottedQuad(part) {
			return false
		}
	}
	return true
}

// isIPv4DottedQuad mirrors inet_pton(AF_INET, ...) semantics: exactly four
// dot-separated decimal octets in [0,255], no leading '+', no surrounding
// whitespace, no IPv6 forms.
func isIPv4DottedQuad(s string) bool {
	ip := net.ParseIP(s)
	if ip == nil {
		return false
	}
	if strings.Contains(s, ":") {
		return false
	}
	return ip.To4() != nil && strings.Count(s, ".") == 3
}

// validateMAC accepts 6 octets in canonical colon-hex form.
func validateMAC(value string) bool {
	parts := strings.Split(value, ":")
	if len(parts) != 6 {
		return false
	}
	for _, p := range parts {
		if len(p) != 2 {
			return false
		}
		if _, err := strconv.ParseUint(p, 16, 8); err != nil {
			return false
		}
	}
	_, err := net.ParseMAC(value)
	return err == nil
}

// validateIfname checks kernel interface name rules: non-empty, at most
// IFNAMSIZ-1 bytes (the kernel reserves one byte for the NUL terminator),
// no '/', no whitespace, no ':', and not "." or "..".
func validateIfname(value string) bool {
	if value == "" || value == "." || value == ".." {
		return false
	}
	if len(value) >= unix.IFNAMSIZ {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '/' || c == ':' || c <= ' ' || c == 0x7f {
			return false
		}
	}
	return true
}
