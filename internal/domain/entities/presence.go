package entities

// PresentOrNil returns p unless it is nil or carries no non-blank field.
// Every nested group of a facility goes through it so that downstream
// serialization never sees an object with only empty members.
func PresentOrNil[T any, P interface {
	*T
	IsEmpty() bool
}](p P) P {
	if p == nil || p.IsEmpty() {
		return nil
	}
	return p
}
