package group

// Callbacks is the capability set a member implements to receive membership
// events. The ctx value handed to Init is threaded through every invocation
// unchanged. Exactly one method runs per Dispatch call, on the caller's
// goroutine.
//
// The nodeIDs slice passed to OnStart is owned by the dispatch call and is
// reused afterwards; callbacks must copy it to retain it past the call.
type Callbacks[T any] interface {
	// OnStop asks the member to halt processing for the named group.
	OnStop(ctx T, name string)
	// OnStart announces a new membership view. value is an opaque integer
	// assigned by the coordinator; eventNumber keys a later Done call.
	OnStart(ctx T, name string, value, eventNumber int, nodeIDs []int)
	// OnFinish signals the numbered event is fully resolved cluster-wide.
	OnFinish(ctx T, name string, eventNumber int)
	// OnTerminate signals the named group is being torn down.
	OnTerminate(ctx T, name string)
	// OnSetID assigns or updates the identifier for the named group.
	OnSetID(ctx T, name string, id int)
}
