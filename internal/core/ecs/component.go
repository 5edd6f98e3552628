package ecs

// Callback names one lifecycle or physics hook a behavior may implement.
type Callback uint8

const (
	CallStart Callback = iota
	CallUpdate
	CallLateUpdate
	CallDestroy
	CallCollisionEnter
	CallCollisionExit
	CallTriggerEnter
	CallTriggerExit
	numCallbacks
)

var callbackNames = [numCallbacks]string{
	"OnStart",
	"OnUpdate",
	"OnLateUpdate",
	"OnDestroy",
	"OnCollisionEnter",
	"OnCollisionExit",
	"OnTriggerEnter",
	"OnTriggerExit",
}

// String returns the script-facing method name, e.g. "OnUpdate".
func (c Callback) String() string {
	if c >= numCallbacks {
		return "OnUnknown"
	}
	return callbackNames[c]
}

// Callbacks lists every hook in declaration order.
func Callbacks() []Callback {
	out := make([]Callback, numCallbacks)
	for i := range out {
		out[i] = Callback(i)
	}
	return out
}

// CallbackSet is a bit set of implemented callbacks.
type CallbackSet uint16

func (s CallbackSet) Has(c Callback) bool { return s&(1<<c) != 0 }

func (s CallbackSet) With(c Callback) CallbackSet { return s | 1<<c }

// SetOf builds a CallbackSet.
func SetOf(cbs ...Callback) CallbackSet {
	var s CallbackSet
	for _, c := range cbs {
		s = s.With(c)
	}
	return s
}

// Behavior is the engine-side view of a component implementation, scripted or
// native. Callbacks is read once when the component is attached.
type Behavior interface {
	Callbacks() CallbackSet
	Enabled() bool
	Invoke(cb Callback, arg any) error
}

// Component is one behavior attached to an actor. Key is unique per actor;
// Type groups components for lookup.
type Component struct {
	Key      string
	Type     string
	Behavior Behavior

	callbacks CallbackSet
}

// Has reports whether the component implemented cb when it was attached.
func (c *Component) Has(cb Callback) bool { return c.callbacks.Has(cb) }

// ComponentIndex addresses a component slot inside one actor.
type ComponentIndex uint32

// indexed callbacks get their own key-ordered dispatch list on the actor.
// Start and destroy are driven from the component list and pending list.
var indexedCallbacks = [...]Callback{
	CallUpdate,
	CallLateUpdate,
	CallCollisionEnter,
	CallCollisionExit,
	CallTriggerEnter,
	CallTriggerExit,
}

func listFor(cb Callback) int {
	for i, c := range indexedCallbacks {
		if c == cb {
			return i
		}
	}
	return -1
}
