package session

// Class is the policy classification of a login session's user.
type Class int

const (
	// Admin sessions get the soft reminder policy and are never killed.
	Admin Class = iota
	// Ordinary sessions get the hard warn-then-kill policy.
	Ordinary
)

func (c Class) String() string {
	if c == Admin {
		return "admin"
	}
	return "ordinary"
}

// Classify decides admin vs ordinary for a resolved session user. root
// is always admin, as is a process whose session could not be resolved
// at all (resolved == false). Everyone else is ordinary unless they are
// a member of the exempt group.
func Classify(user string, resolved bool, exempt string, groups Groups) (Class, error) {
	if !resolved || user == "root" {
		return Admin, nil
	}
	member, err := groups.Groups(user)
	if err != nil {
		return Ordinary, err
	}
	if member[exempt] {
		return Admin, nil
	}
	return Ordinary, nil
}
