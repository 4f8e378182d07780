package attachment

type Action string

const (
	ActionKeep    Action = "keep"
	ActionReplace Action = "replace"
	ActionRemove  Action = "remove"
)

// Asset is what is persisted in a slot before the edit session starts.
type Asset struct {
	URL  string
	Name string
}

// UserAction is what the user did to a slot during the session.
type UserAction struct {
	Selected *File
	Removed  bool
}

// Decision is the outcome for one slot. File is set only for ActionReplace.
type Decision struct {
	Action Action
	File   *File
}

// Decide reconciles the initial asset of a slot with the user's action.
// A selected file always wins over a removal. Removing a slot that holds
// nothing is a no-op.
func Decide(initial *Asset, action UserAction) Decision {
	if action.Selected != nil {
		return Decision{Action: ActionReplace, File: action.Selected}
	}
	if action.Removed && initial != nil && initial.URL != "" {
		return Decision{Action: ActionRemove}
	}
	return Decision{Action: ActionKeep}
}

// Slot tracks one attachment position through an edit session.
type Slot struct {
	Name string
	Kind Kind

	initial *Asset
	pending *File
	removed bool
	err     error
}

// NewSlot creates a slot, optionally holding a persisted asset.
func NewSlot(name string, kind Kind, initial *Asset) *Slot {
	return &Slot{Name: name, Kind: kind, initial: initial}
}

// Select puts f in the slot. The file is kept even when it violates the
// slot constraint so that the error stays attached to it.
func (s *Slot) Select(f *File) error {
	s.pending = f
	s.removed = false
	s.err = Check(s.Name, s.Kind, f)
	return s.err
}

// Remove empties the slot. The persisted asset was already hidden by any
// pending selection, so it is removed as well.
func (s *Slot) Remove() {
	s.pending = nil
	s.err = nil
	s.removed = s.initial != nil
}

// Displayed returns the persisted asset while it is still shown in the
// edit view.
func (s *Slot) Displayed() (*Asset, bool) {
	if s.initial == nil || s.pending != nil || s.removed {
		return nil, false
	}
	return s.initial, true
}

func (s *Slot) Pending() *File {
	return s.pending
}

// Err is the constraint violation of the pending file, if any.
func (s *Slot) Err() error {
	return s.err
}

func (s *Slot) Decision() Decision {
	return Decide(s.initial, UserAction{Selected: s.pending, Removed: s.removed})
}
