package lifecycle

import "bloodbank/pkg/model"

// statusTargets maps the status-changing actions to the status they produce.
var statusTargets = map[model.Action]model.Status{
	model.ActionRegister:   model.StatusRegistered,
	model.ActionConfirm:    model.StatusConfirmed,
	model.ActionComplete:   model.StatusCompleted,
	model.ActionReject:     model.StatusRejected,
	model.ActionCancel:     model.StatusCancelled,
	model.ActionMarkNoShow: model.StatusNoShow,
}

var allowed = map[model.Status][]model.Status{
	model.StatusPending: {
		model.StatusRegistered,
		model.StatusConfirmed,
		model.StatusRejected,
		model.StatusCancelled,
		model.StatusCompleted,
	},
	model.StatusRegistered: {
		model.StatusConfirmed,
		model.StatusCompleted,
		model.StatusNoShow,
	},
	model.StatusConfirmed: {
		model.StatusCompleted,
		model.StatusNoShow,
	},
}

// TargetStatus returns the status an action moves a record to, if it is a
// status-changing action.
func TargetStatus(action model.Action) (model.Status, bool) {
	s, ok := statusTargets[action]
	return s, ok
}

// CanMove reports whether the lifecycle permits from → to.
func CanMove(from, to model.Status) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no status-changing action applies to s.
func IsTerminal(s model.Status) bool {
	return len(allowed[s]) == 0
}

// IsKnownAction reports whether action is accepted by Transition.
func IsKnownAction(action model.Action) bool {
	if _, ok := statusTargets[action]; ok {
		return true
	}
	switch action {
	case model.ActionEditMetadata, model.ActionMarkUsed, model.ActionDelete:
		return true
	}
	return false
}
