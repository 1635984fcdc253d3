package version

import "fmt"

// Redis key layout carried over from the shared deployment: the global
// counter lives at bookings:version, per-entity counters under
// bookings:version:<channel>.
const (
	keyVersion       = "bookings:version"
	keyVersionPrefix = "bookings:version:"
)

// Channel identifies one version counter: the global channel, one
// specialist's channel, or one workpoint's channel.
type Channel struct {
	key string
}

// Global returns the channel bumped on every booking mutation.
func Global() Channel {
	return Channel{}
}

// Specialist returns the channel for one specialist's bookings.
func Specialist(id int64) Channel {
	return Channel{key: fmt.Sprintf("specialist:%d", id)}
}

// Workpoint returns the channel for one workpoint's bookings.
func Workpoint(id int64) Channel {
	return Channel{key: fmt.Sprintf("workpoint:%d", id)}
}

// IsGlobal reports whether c is the global channel.
func (c Channel) IsGlobal() bool {
	return c.key == ""
}

func (c Channel) String() string {
	if c.IsGlobal() {
		return "global"
	}
	return c.key
}

func (c Channel) redisKey() string {
	if c.IsGlobal() {
		return keyVersion
	}
	return keyVersionPrefix + c.key
}
