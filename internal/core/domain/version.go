package domain

import (
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

// Channel is a pre-release channel. Channels are totally ordered: alpha < beta < rs.
type Channel string

const (
	// ChannelAlpha is the earliest pre-release channel.
	ChannelAlpha Channel = "alpha"
	// ChannelBeta follows alpha.
	ChannelBeta Channel = "beta"
	// ChannelRS is the release-candidate channel.
	ChannelRS Channel = "rs"
)

// Channels lists every pre-release channel in ascending order.
var Channels = []Channel{ChannelAlpha, ChannelBeta, ChannelRS}

// ParseChannel validates a pre-release channel name. The empty string yields the zero Channel.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case "":
		return "", nil
	case ChannelAlpha, ChannelBeta, ChannelRS:
		return Channel(s), nil
	default:
		return "", Annotate(ErrInvalidChannel, "channel", s)
	}
}

// Rank returns the position of the channel in the channel order, or 0 for an unknown channel.
func (c Channel) Rank() int {
	switch c {
	case ChannelAlpha:
		return 1
	case ChannelBeta:
		return 2
	case ChannelRS:
		return 3
	default:
		return 0
	}
}

// PreRelease is the pre-release part of a version.
type PreRelease struct {
	Channel Channel
	Ordinal uint64
}

// Version is a semantic version restricted to the alpha/beta/rs pre-release scheme.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
	Pre   *PreRelease
}

var preReleasePattern = regexp.MustCompile(`^(alpha|beta|rs)(?:\.(\d+))?$`)

// ParseVersion parses "major.minor.patch[-channel[.ordinal]]".
func ParseVersion(s string) (Version, error) {
	sv, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, zerr.With(Annotate(ErrVersionParse, "version", s), "reason", err.Error())
	}
	if sv.Metadata() != "" {
		return Version{}, Annotate(ErrVersionParse, "version", s)
	}

	v := Version{Major: sv.Major(), Minor: sv.Minor(), Patch: sv.Patch()}
	if pre := sv.Prerelease(); pre != "" {
		m := preReleasePattern.FindStringSubmatch(pre)
		if m == nil {
			return Version{}, zerr.With(Annotate(ErrVersionParse, "version", s), "pre_release", pre)
		}
		p := &PreRelease{Channel: Channel(m[1])}
		if m[2] != "" {
			p.Ordinal, err = strconv.ParseUint(m[2], 10, 64)
			if err != nil {
				return Version{}, Annotate(ErrVersionParse, "version", s)
			}
		}
		v.Pre = p
	}
	return v, nil
}

// String renders the canonical form. A zero ordinal is omitted.
func (v Version) String() string {
	b := make([]byte, 0, 16)
	b = strconv.AppendUint(b, v.Major, 10)
	b = append(b, '.')
	b = strconv.AppendUint(b, v.Minor, 10)
	b = append(b, '.')
	b = strconv.AppendUint(b, v.Patch, 10)
	if v.Pre != nil {
		b = append(b, '-')
		b = append(b, v.Pre.Channel...)
		if v.Pre.Ordinal > 0 {
			b = append(b, '.')
			b = strconv.AppendUint(b, v.Pre.Ordinal, 10)
		}
	}
	return string(b)
}

// IsPreRelease reports whether the version carries a pre-release channel.
func (v Version) IsPreRelease() bool {
	return v.Pre != nil
}

// Equal reports whether two versions are identical.
func (v Version) Equal(o Version) bool {
	if v.Major != o.Major || v.Minor != o.Minor || v.Patch != o.Patch {
		return false
	}
	if v.Pre == nil || o.Pre == nil {
		return v.Pre == nil && o.Pre == nil
	}
	return *v.Pre == *o.Pre
}

// TransitionKind names a version transition.
type TransitionKind string

const (
	// TransitionPatch bumps the patch number.
	TransitionPatch TransitionKind = "patch"
	// TransitionMinor bumps the minor number and resets patch.
	TransitionMinor TransitionKind = "minor"
	// TransitionMajor bumps the major number and resets minor and patch.
	TransitionMajor TransitionKind = "major"
	// TransitionPreRelease enters, advances or switches a pre-release channel.
	TransitionPreRelease TransitionKind = "pre-release"
	// TransitionPreReleaseRemove drops the pre-release and bumps patch.
	TransitionPreReleaseRemove TransitionKind = "pre-release-remove"
)

// ParseTransitionKind validates a transition name.
func ParseTransitionKind(s string) (TransitionKind, error) {
	switch k := TransitionKind(s); k {
	case TransitionPatch, TransitionMinor, TransitionMajor, TransitionPreRelease, TransitionPreReleaseRemove:
		return k, nil
	default:
		return "", Annotate(ErrInvalidTransition, "kind", s)
	}
}

// Transition computes the next version. It performs no I/O.
// ch is only consulted by TransitionPreRelease; the zero Channel means "not given".
func Transition(current Version, kind TransitionKind, ch Channel) (Version, error) {
	next := current
	if current.Pre != nil {
		pre := *current.Pre
		next.Pre = &pre
	}

	switch kind {
	case TransitionPatch:
		next.Patch++
		next.Pre = nil
	case TransitionMinor:
		next.Minor++
		next.Patch = 0
		next.Pre = nil
	case TransitionMajor:
		next.Major++
		next.Minor = 0
		next.Patch = 0
		next.Pre = nil
	case TransitionPreRelease:
		if ch != "" && ch.Rank() == 0 {
			return Version{}, Annotate(ErrInvalidChannel, "channel", string(ch))
		}
		switch {
		case next.Pre == nil:
			if ch == "" {
				ch = ChannelAlpha
			}
			next.Pre = &PreRelease{Channel: ch}
		case ch == "" || ch == next.Pre.Channel:
			next.Pre.Ordinal++
		case ch.Rank() < next.Pre.Channel.Rank():
			next.Patch++
			next.Pre = &PreRelease{Channel: ch}
		default:
			next.Pre = &PreRelease{Channel: ch}
		}
	case TransitionPreReleaseRemove:
		if next.Pre != nil {
			next.Pre = nil
			next.Patch++
		}
	default:
		return Version{}, Annotate(ErrInvalidTransition, "kind", string(kind))
	}
	return next, nil
}

// VersionChoice is one entry of the bump menu.
type VersionChoice struct {
	Label   string
	Kind    TransitionKind
	Channel Channel
	Version Version
}

// Choices returns the transitions offered for the given version, in menu order.
func Choices(current Version) []VersionChoice {
	var out []VersionChoice
	add := func(label string, kind TransitionKind, ch Channel) {
		// Every kind and channel below is valid, so Transition cannot fail.
		v, _ := Transition(current, kind, ch)
		out = append(out, VersionChoice{Label: label, Kind: kind, Channel: ch, Version: v})
	}

	if current.Pre != nil {
		add("pre-release", TransitionPreRelease, "")
		add("remove pre-release and increment patch", TransitionPreReleaseRemove, "")
		for _, ch := range Channels {
			if ch != current.Pre.Channel {
				add("change to -"+string(ch)+" pre-release", TransitionPreRelease, ch)
			}
		}
	} else {
		for _, ch := range Channels {
			add("add -"+string(ch)+" pre-release", TransitionPreRelease, ch)
		}
	}
	add("patch version", TransitionPatch, "")
	add("minor version", TransitionMinor, "")
	add("major version", TransitionMajor, "")
	return out
}
