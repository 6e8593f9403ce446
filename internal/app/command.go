package app

import (
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// Command is the playback action a recognized gesture stands for.
type Command int

const (
	Unknown Command = iota
	Play
	Pause
)

// String returns the lowercase command name, which is also the template
// name it is recognized from.
func (c Command) String() string {
	switch c {
	case Play:
		return gesture.NamePlay
	case Pause:
		return gesture.NamePause
	default:
		return gesture.UnknownName
	}
}

// MarshalText encodes the command by name.
func (c Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a command name. Names other than play and pause
// are rejected.
func (c *Command) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case gesture.NamePlay:
		*c = Play
	case gesture.NamePause:
		*c = Pause
	case gesture.UnknownName, "":
		*c = Unknown
	default:
		return fmt.Errorf("unknown command %q", s)
	}
	return nil
}

// CommandFor maps a template name to its command.
func CommandFor(name string) Command {
	switch name {
	case gesture.NamePlay:
		return Play
	case gesture.NamePause:
		return Pause
	default:
		return Unknown
	}
}

// CommandForResult maps a recognition result to its command. Results
// scoring below minScore are Unknown.
func CommandForResult(r gesture.Result, minScore float64) Command {
	if r.Score < minScore {
		return Unknown
	}
	return CommandFor(r.Name)
}
