package dynamics

import (
	"fmt"
	"regexp"
	"strconv"
)

// ChannelKind identifies the control line a channel belongs to.
type ChannelKind int

const (
	DriveChannel ChannelKind = iota
	MeasureChannel
	ControlChannel
	AcquireChannel
)

var channelPrefixes = map[ChannelKind]string{
	DriveChannel:   "d",
	MeasureChannel: "m",
	ControlChannel: "u",
	AcquireChannel: "a",
}

var channelRegex = regexp.MustCompile(`^([dmua])(\d+)$`)

func (k ChannelKind) String() string {
	switch k {
	case DriveChannel:
		return "DriveChannel"
	case MeasureChannel:
		return "MeasureChannel"
	case ControlChannel:
		return "ControlChannel"
	case AcquireChannel:
		return "AcquireChannel"
	default:
		return fmt.Sprintf("ChannelKind(%d)", int(k))
	}
}

// Channel is a named control line, e.g. d0 or u3.
type Channel struct {
	Kind  ChannelKind
	Index int
}

// D returns drive channel i.
func D(i int) Channel { return Channel{Kind: DriveChannel, Index: i} }

// M returns measurement channel i.
func M(i int) Channel { return Channel{Kind: MeasureChannel, Index: i} }

// U returns control channel i.
func U(i int) Channel { return Channel{Kind: ControlChannel, Index: i} }

// A returns acquire channel i.
func A(i int) Channel { return Channel{Kind: AcquireChannel, Index: i} }

// Name renders the channel in its short form.
func (c Channel) Name() string {
	return channelPrefixes[c.Kind] + strconv.Itoa(c.Index)
}

func (c Channel) String() string {
	return c.Name()
}

/*
ParseChannel turns a short channel name such as "d0", "m3" or "u12" back into a
Channel. Anything not matching one of the known prefixes followed by a decimal index
is rejected as a configuration error.
*/
func ParseChannel(name string) (Channel, error) {
	matches := channelRegex.FindStringSubmatch(name)
	if matches == nil {
		return Channel{}, fmt.Errorf("%w: unrecognized channel type requested: %q", ErrConfiguration, name)
	}

	index, err := strconv.Atoi(matches[2])
	if err != nil {
		return Channel{}, fmt.Errorf("%w: invalid channel index in %q: %v", ErrConfiguration, name, err)
	}

	for kind, prefix := range channelPrefixes {
		if prefix == matches[1] {
			return Channel{Kind: kind, Index: index}, nil
		}
	}

	return Channel{}, fmt.Errorf("%w: unrecognized channel type requested: %q", ErrConfiguration, name)
}

// QubitPair keys the control-channel map.
type QubitPair [2]int
