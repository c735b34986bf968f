package proto

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/ValentinKolb/zkwire/lib/jute"
)

// Scheme tokens and fixed identities of the built-in ACL schemes
const (
	SchemeWorld  = "world"
	SchemeIP     = "ip"
	SchemeDigest = "digest"
	// SchemeSuper is not a wire token of its own, super credentials travel as digest
	SchemeSuper = "super"

	IDAnyone = "anyone"
)

// --------------------------------------------------------------------------
// Permissions
// --------------------------------------------------------------------------

// Perm is the permission bitmask of an ACL entry
type Perm uint32

const (
	PermRead Perm = 1 << iota
	PermWrite
	PermCreate
	PermDelete
	PermAdmin

	PermAll = PermRead | PermWrite | PermCreate | PermDelete | PermAdmin
)

// permLetters follows the order used by the zkCli tool
var permLetters = []struct {
	letter byte
	perm   Perm
}{
	{'c', PermCreate},
	{'d', PermDelete},
	{'r', PermRead},
	{'w', PermWrite},
	{'a', PermAdmin},
}

// ParsePerms parses a permission string like "cdrwa"
func ParsePerms(s string) (Perm, error) {
	var p Perm
outer:
	for i := 0; i < len(s); i++ {
		for _, l := range permLetters {
			if s[i] == l.letter {
				p |= l.perm
				continue outer
			}
		}
		return 0, fmt.Errorf("invalid permission %q in %q (expected any of cdrwa)", s[i], s)
	}
	return p, nil
}

// String returns the permission letters, e.g. "cdrwa"
func (p Perm) String() string {
	var sb strings.Builder
	for _, l := range permLetters {
		if p&l.perm != 0 {
			sb.WriteByte(l.letter)
		}
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// Schemes
// --------------------------------------------------------------------------

// Scheme is the authentication scheme of an ACL entry. The set of schemes is
// closed: World, IP and Digest are the only implementations, so a scheme name
// can never be paired with an identity of another scheme.
type Scheme interface {
	// Name returns the scheme token written to the wire
	Name() string
	// Identity returns the scheme specific identity written after the name
	Identity() string

	isScheme()
}

// World grants access to everyone
type World struct{}

func (World) Name() string     { return SchemeWorld }
func (World) Identity() string { return IDAnyone }
func (World) isScheme()        {}

// IP grants access to clients connecting from the given address
type IP struct {
	Addr netip.Addr
}

func (s IP) Name() string     { return SchemeIP }
func (s IP) Identity() string { return s.Addr.String() }
func (IP) isScheme()          {}

// Digest grants access to clients authenticated with the given credential,
// usually "user:base64(sha1(user:password))"
type Digest struct {
	Credential string
}

func (s Digest) Name() string     { return SchemeDigest }
func (s Digest) Identity() string { return s.Credential }
func (Digest) isScheme()          {}

// SuperDigest returns the digest credential of the super user
func SuperDigest(hash string) Digest {
	return Digest{Credential: SchemeSuper + ":" + hash}
}

// --------------------------------------------------------------------------
// ACL
// --------------------------------------------------------------------------

// ACL is a single access control entry. ID is informational only: the
// identity written to the wire is always derived from the scheme.
type ACL struct {
	Perms  Perm
	Scheme Scheme
	ID     string
}

// NewACL creates an ACL entry whose ID matches the scheme identity
func NewACL(perms Perm, scheme Scheme) ACL {
	return ACL{Perms: perms, Scheme: scheme, ID: scheme.Identity()}
}

// DefaultACL returns the open entry: all permissions for everyone
func DefaultACL() ACL {
	return NewACL(PermAll, World{})
}

// WorldACL returns the default ACL list of a created node
func WorldACL() []ACL {
	return []ACL{DefaultACL()}
}

// scheme returns the entry's scheme, the zero value of ACL uses World
func (a ACL) scheme() Scheme {
	if a.Scheme == nil {
		return World{}
	}
	return a.Scheme
}

// Encode writes the permissions, the scheme token and the identity
func (a ACL) Encode(w *jute.Writer) {
	s := a.scheme()
	w.WriteUint32(uint32(a.Perms))
	w.WriteString(s.Name())
	w.WriteString(s.Identity())
}

// String returns the entry in zkCli notation, e.g. "world:anyone:cdrwa"
func (a ACL) String() string {
	s := a.scheme()
	return s.Name() + ":" + s.Identity() + ":" + a.Perms.String()
}

// DecodeACL reads an ACL entry and maps the scheme token back to its variant
func DecodeACL(r *jute.Reader) (ACL, error) {
	perms, err := r.ReadUint32()
	if err != nil {
		return ACL{}, err
	}
	name, err := r.ReadString()
	if err != nil {
		return ACL{}, err
	}
	id, err := r.ReadString()
	if err != nil {
		return ACL{}, err
	}

	var scheme Scheme
	switch name {
	case SchemeWorld:
		scheme = World{}
	case SchemeIP:
		addr, err := netip.ParseAddr(id)
		if err != nil {
			return ACL{}, fmt.Errorf("invalid ip acl identity %q: %w", id, err)
		}
		scheme = IP{Addr: addr}
	case SchemeDigest:
		scheme = Digest{Credential: id}
	default:
		return ACL{}, fmt.Errorf("unknown acl scheme %q", name)
	}
	return ACL{Perms: Perm(perms), Scheme: scheme, ID: id}, nil
}

func decodeACLs(r *jute.Reader) ([]ACL, error) {
	return jute.ReadVector(r, DecodeACL)
}
