// Package connection implements the shared data model: an ordered mapping
// from setting-group name to a typed Setting, with structural equality
// parametrised by compare flags and a verify dispatch that delegates to
// each setting's own verifier. The core it supports is synchronous,
// single-threaded by contract: a Connection must be externally
// synchronized by its caller if shared across goroutines.
package connection

// Well-known setting-group identifiers. These names are part of the same
// external contract as the bond option vocabulary: case-sensitive, never
// renamed.
const (
	GroupBond             = "bond"
	GroupWireless         = "802-11-wireless"
	GroupWirelessSecurity = "802-11-wireless-security"
	Group8021X            = "802-1x"
	GroupInfiniBand       = "infiniband"
)

// CompareFlags parametrises Connection/Setting equality. The zero value is
// EXACT.
type CompareFlags uint32

const (
	// CompareExact compares every field, without skipping any. A setting
	// may still compare effective rather than stored values (the bond
	// setting falls back to option defaults and to the num_grat_arp /
	// num_unsol_na twin).
	CompareExact CompareFlags = 0

	// CompareInferrable ignores fields that may legitimately drift between
	// user intent and observed runtime state (e.g. fail_over_mac,
	// active_slave on a bond setting).
	CompareInferrable CompareFlags = 1 << iota
)

// Setting is implemented by every setting-group variant (bond,
// 802-11-wireless, 802-11-wireless-security, 802-1x, infiniband). Concrete
// setting types live in their own packages (internal/bond, internal/wifi)
// and are registered into a Connection purely through this interface, so
// this package never imports them.
type Setting interface {
	// GroupName returns the setting-group identifier this value belongs
	// under (one of the Group* constants).
	GroupName() string

	// Verify checks the setting in isolation and, where the setting needs
	// cross-setting context (e.g. the bond setting reads infiniband),
	// against the enclosing connection. conn is a read-only borrow: a
	// Setting must never store a reference to it.
	Verify(conn *Connection) error

	// Equal reports whether this setting equals other under flags. other
	// may be nil, in which case implementations should treat the setting as
	// unequal unless explicitly documented otherwise.
	Equal(other Setting, flags CompareFlags) bool
}

// Connection is an ordered mapping from setting-group identifier to at most
// one Setting. There are no parent/child relations: connections are plain
// aggregates, and every Setting they hold is owned exclusively by them.
type Connection struct {
	order    []string
	settings map[string]Setting
}

// New returns an empty Connection.
func New() *Connection {
	return &Connection{settings: make(map[string]Setting)}
}

// Get returns the setting registered under group, if any.
func (c *Connection) Get(group string) (Setting, bool) {
	s, ok := c.settings[group]
	return s, ok
}

// Set adds or replaces the setting for its GroupName(). At most one
// instance per group is ever held.
func (c *Connection) Set(s Setting) {
	group := s.GroupName()
	if _, exists := c.settings[group]; !exists {
		c.order = append(c.order, group)
	}
	c.settings[group] = s
}

// Remove drops the setting registered under group, if any.
func (c *Connection) Remove(group string) {
	if _, ok := c.settings[group]; !ok {
		return
	}
	delete(c.settings, group)
	for i, g := range c.order {
		if g == group {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Groups returns the registered group names in insertion order.
func (c *Connection) Groups() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Verify dispatches to every registered setting's Verify in turn, in
// insertion order, stopping at the first non-nil result. A
// KindNormalizable result still halts dispatch: the caller is expected to
// rewrite and re-verify, not to continue past it.
func (c *Connection) Verify() error {
	for _, group := range c.order {
		if err := c.settings[group].Verify(c); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports structural equality between c and other under flags. Every
// group present in either connection must be present in both and its
// settings must compare Equal; a group present in only one side always
// makes the connections unequal.
func (c *Connection) Equal(other *Connection, flags CompareFlags) bool {
	if other == nil {
		return false
	}
	if len(c.settings) != len(other.settings) {
		return false
	}
	for group, s := range c.settings {
		os, ok := other.settings[group]
		if !ok {
			return false
		}
		if !s.Equal(os, flags) {
			return false
		}
	}
	return true
}

// InfiniBandSetting is a minimal stand-in for the infiniband setting group.
// The core only ever needs to know whether one is present on the enclosing
// connection; infiniband's own field grammar is outside this repository's
// scope.
type InfiniBandSetting struct{}

func (InfiniBandSetting) GroupName() string { return GroupInfiniBand }

func (InfiniBandSetting) Verify(*Connection) error { return nil }

func (InfiniBandSetting) Equal(other Setting, _ CompareFlags) bool {
	_, ok := other.(InfiniBandSetting)
	return ok
}
