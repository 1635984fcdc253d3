package cache

import "fmt"

// View modes that carry an entity id in their cache key.
const (
	ModeSpecialist = "specialist"
	ModeSupervisor = "supervisor"
)

// Scope identifies one cached calendar computation: the view mode plus the
// specialist or workpoint it was computed for. Exactly one of the ids is
// meaningful depending on the mode; a scope with neither covers the plain
// mode-wide view.
type Scope struct {
	Mode         string
	SpecialistID int64
	WorkpointID  int64
}

// ModeScope returns the scope for a mode-wide view with no entity id.
func ModeScope(mode string) Scope {
	return Scope{Mode: mode}
}

// SpecialistScope returns the scope for one specialist's calendar.
func SpecialistScope(specialistID int64) Scope {
	return Scope{Mode: ModeSpecialist, SpecialistID: specialistID}
}

// SupervisorScope returns the scope for one workpoint's supervisor view.
func SupervisorScope(workpointID int64) Scope {
	return Scope{Mode: ModeSupervisor, WorkpointID: workpointID}
}

// Key returns the storage key for the scope: "<mode>", "<mode>_spec_<id>"
// for specialist mode, "<mode>_wp_<id>" for supervisor mode.
func (s Scope) Key() string {
	key := s.Mode
	if s.Mode == ModeSpecialist && s.SpecialistID > 0 {
		key += fmt.Sprintf("_spec_%d", s.SpecialistID)
	} else if s.Mode == ModeSupervisor && s.WorkpointID > 0 {
		key += fmt.Sprintf("_wp_%d", s.WorkpointID)
	}
	return key
}

func (s Scope) String() string {
	return s.Key()
}
