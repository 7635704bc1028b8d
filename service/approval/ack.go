package approval

import "github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"

// Acknowledged reports whether the manager stage may be left: either no
// acknowledgment is mandated or the administrator checked it.
func Acknowledged(o *model.Obligation) bool {
	if o == nil {
		return false
	}
	return o.Acknowledged()
}

// PendingAcknowledgment reports whether the manager still owes the check.
func PendingAcknowledgment(o *model.Obligation) bool {
	return o != nil && o.AckRequired && !o.AckChecked
}
