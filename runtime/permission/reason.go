package permission

// Denial reasons. The texts are shown to end users and must stay stable for a
// given state.
const (
	ReasonUnknownStatus    = "The obligation status is not registered"
	ReasonReadOnly         = "Viewers have read-only access"
	ReasonClosedRestricted = "Only administrators, system managers and signer validators can act on a closed obligation"
	ReasonNotStartedArea   = "Only members of the assigned area can act before the obligation starts"
	ReasonValidationRoles  = "Only administrators, system managers and signer validators can act during regulatory validation"
	ReasonExecutionRoles   = "Only the assigned area, administrators and system managers can act during execution"
	ReasonRoutingApproved  = "Comments and attachments are blocked once routing is approved"
	ReasonRoutingManagers  = "Only administrators and system managers can act once routing is approved"
	ReasonStageRoles       = "Only administrators, system managers, signer validators and the stage approver can act at this stage"

	ReasonNotExecution        = "Evidence can only be handled while the obligation is being executed"
	ReasonNotAssignedArea     = "Only members of the assigned area can do this"
	ReasonCorrespondenceStage = "Correspondence can only be handled during regulatory validation"
	ReasonElevatedOnly        = "Only administrators, system managers and signer validators can do this"
	ReasonManagerOnly         = "Only administrators and system managers can do this"
	ReasonAdministratorOnly   = "Only administrators can do this"

	ReasonNotValidation         = "Only available during regulatory validation"
	ReasonConferenceNotApproved = "The conference has not been approved yet"
	ReasonConferenceApproved    = "The conference has already been approved"

	ReasonNotOverdue           = "A delay can only be justified while the obligation is overdue"
	ReasonExecutorOnly         = "Only executors can send the obligation to analysis"
	ReasonMissingEvidence      = "Attach at least one evidence file or link first"
	ReasonMissingJustification = "Justify the delay before sending to analysis"

	ReasonNotRoutable       = "Routing is not available at this status"
	ReasonRoutingRole       = "Your role cannot route the obligation at this status"
	ReasonAckPending        = "The regulatory manager acknowledgment must be checked first"
	ReasonNotDecisionStage  = "Approval decisions are only available during approval or board signature"
	ReasonConcluded         = "The obligation is already concluded"
	ReasonProtocolStage     = "A protocol can only be attached during regulatory validation or after routing approval"
	ReasonMissingCorrespond = "Attach the correspondence first"
	ReasonOpenDependents    = "Conditioned obligations are still open"

	ReasonClosed          = "The obligation is already closed"
	ReasonNotDeletable    = "Only obligations that have not started can be deleted"
	ReasonAlreadySent     = "The obligation was already sent to the area"
	ReasonHasHistory      = "Obligations with routing history cannot be deleted"
	ReasonNotManagerStage = "Acknowledgment is only available during regulatory manager review"
	ReasonAcknowledged    = "The acknowledgment is already checked"
	ReasonNotSendable     = "Only obligations that have not started can be sent to the area"
	ReasonNotRunning      = "Only obligations that are not started, pending or in progress can be marked overdue"
	ReasonDeadlineAhead   = "The deadline has not passed"
)
