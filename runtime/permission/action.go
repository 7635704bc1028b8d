package permission

// Action is a candidate operation on an obligation.
type Action string

const (
	AttachEvidence       Action = "attachEvidence"
	AttachCorrespondence Action = "attachCorrespondence"
	AttachOther          Action = "attachOther"
	Comment              Action = "comment"
	RequestAdjustments   Action = "requestAdjustments"
	ApproveConference    Action = "approveConference"
	JustifyDelay         Action = "justifyDelay"
	SendToAnalysis       Action = "sendToAnalysis"
	AdvanceRouting       Action = "advanceRouting"
	Approve              Action = "approve"
	Reject               Action = "reject"
	AttachProtocol       Action = "attachProtocol"
	MarkNotApplicable    Action = "markNotApplicable"
	Delete               Action = "delete"
	Edit                 Action = "edit"
	Acknowledge          Action = "acknowledge"
	SendToArea           Action = "sendToArea"
	RouteToApproval      Action = "routeToApproval"
	MarkOverdue          Action = "markOverdue"
)

var actions = []Action{
	AttachEvidence, AttachCorrespondence, AttachOther, Comment, RequestAdjustments,
	ApproveConference, JustifyDelay, SendToAnalysis, AdvanceRouting, Approve, Reject,
	AttachProtocol, MarkNotApplicable, Delete, Edit, Acknowledge, SendToArea,
	RouteToApproval, MarkOverdue,
}

// Actions returns every action in evaluation order.
func Actions() []Action {
	return append([]Action(nil), actions...)
}

func (a Action) String() string { return string(a) }
