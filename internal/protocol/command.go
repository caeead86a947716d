package protocol

import "strconv"

// Command verbs sent client -> coordinator.
const (
	VerbSetup = "setup"
	VerbJoin  = "join"
	VerbLeave = "leave"
	VerbDone  = "done"
)

// MaxProgNameLen is the coordinator's program name bound. Longer names are
// truncated, not rejected.
const MaxProgNameLen = 31

// TruncateProgName bounds a program name to the setup contract.
func TruncateProgName(name string) string {
	if len(name) > MaxProgNameLen {
		return name[:MaxProgNameLen]
	}
	return name
}

// SetupCommand registers the calling program at the given membership level.
func SetupCommand(progName string, level int) []byte {
	return Encode(VerbSetup, TruncateProgName(progName), strconv.Itoa(level))
}

// JoinCommand requests membership in the named group.
func JoinCommand(name string) []byte {
	return Encode(VerbJoin, name)
}

// LeaveCommand requests departure from the named group.
func LeaveCommand(name string) []byte {
	return Encode(VerbLeave, name)
}

// DoneCommand confirms processing of the numbered membership event.
func DoneCommand(name string, eventNumber int) []byte {
	return Encode(VerbDone, name, strconv.Itoa(eventNumber))
}
