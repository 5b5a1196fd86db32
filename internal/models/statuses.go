package models

type UserRole string
type BarterStatus string
type SkillType string
type SkillLevel string
type MessageType string
type ReportReason string
type ReportStatus string
type ProofFileType string
type NotificationType string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	BarterStatusPending   BarterStatus = "pending"
	BarterStatusAccepted  BarterStatus = "accepted"
	BarterStatusDeclined  BarterStatus = "declined"
	BarterStatusCompleted BarterStatus = "completed"

	SkillTypeOffered SkillType = "offered"
	SkillTypeWanted  SkillType = "wanted"

	SkillLevelBeginner     SkillLevel = "beginner"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelAdvanced     SkillLevel = "advanced"
	SkillLevelExpert       SkillLevel = "expert"

	MessageTypeText    MessageType = "text"
	MessageTypeMedia   MessageType = "media"
	MessageTypeMeeting MessageType = "meeting"

	ReportReasonSpam          ReportReason = "spam"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonScam          ReportReason = "scam"
	ReportReasonOther         ReportReason = "other"

	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewed  ReportStatus = "reviewed"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"

	ProofFileImage    ProofFileType = "image"
	ProofFileDocument ProofFileType = "document"

	NotificationBarterRequest   NotificationType = "barter_request"
	NotificationBarterAccepted  NotificationType = "barter_accepted"
	NotificationBarterDeclined  NotificationType = "barter_declined"
	NotificationNewMessage      NotificationType = "new_message"
	NotificationBarterCompleted NotificationType = "barter_completed"
)

// barterTransitions lists the status changes a barter may go through.
// Cancelling a pending request is a delete, not a status.
var barterTransitions = map[BarterStatus][]BarterStatus{
	BarterStatusPending:  {BarterStatusAccepted, BarterStatusDeclined},
	BarterStatusAccepted: {BarterStatusCompleted},
}

func (s BarterStatus) IsValid() bool {
	switch s {
	case BarterStatusPending, BarterStatusAccepted, BarterStatusDeclined, BarterStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether s may move to next. Re-applying the
// current status is allowed and treated as a no-op by callers.
func (s BarterStatus) CanTransitionTo(next BarterStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range barterTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowsMessaging is true once the barter has been accepted.
func (s BarterStatus) AllowsMessaging() bool {
	return s == BarterStatusAccepted || s == BarterStatusCompleted
}

var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusPending:  {ReportStatusReviewed, ReportStatusResolved, ReportStatusDismissed},
	ReportStatusReviewed: {ReportStatusResolved, ReportStatusDismissed},
}

func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range reportTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (r ReportReason) IsValid() bool {
	switch r {
	case ReportReasonSpam, ReportReasonHarassment, ReportReasonInappropriate, ReportReasonScam, ReportReasonOther:
		return true
	}
	return false
}

// IsEmailKind reports whether the type is one of the four kinds the email
// dispatcher renders.
func (t NotificationType) IsEmailKind() bool {
	switch t {
	case NotificationBarterRequest, NotificationBarterAccepted, NotificationBarterDeclined, NotificationNewMessage:
		return true
	}
	return false
}
