package validator

import (
	"log"

	"barterly/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules registers the enum rules backed by models/statuses.go.
func registerCustomRules(v *validator.Validate) {
	// A rule that cannot be registered is a startup bug.
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-barter-status", oneOf(
		models.BarterStatusPending, models.BarterStatusAccepted,
		models.BarterStatusDeclined, models.BarterStatusCompleted,
	))
	mustRegister("is-skill-type", oneOf(models.SkillTypeOffered, models.SkillTypeWanted))
	mustRegister("is-skill-level", oneOf(
		models.SkillLevelBeginner, models.SkillLevelIntermediate,
		models.SkillLevelAdvanced, models.SkillLevelExpert,
	))
	mustRegister("is-report-reason", oneOf(
		models.ReportReasonSpam, models.ReportReasonHarassment, models.ReportReasonInappropriate,
		models.ReportReasonScam, models.ReportReasonOther,
	))
	mustRegister("is-report-status", oneOf(
		models.ReportStatusPending, models.ReportStatusReviewed,
		models.ReportStatusResolved, models.ReportStatusDismissed,
	))
	mustRegister("is-notification-type", oneOf(
		models.NotificationBarterRequest, models.NotificationBarterAccepted,
		models.NotificationBarterDeclined, models.NotificationNewMessage,
	))
	mustRegister("is-message-type", oneOf(
		models.MessageTypeText, models.MessageTypeMedia, models.MessageTypeMeeting,
	))
}

// oneOf builds a rule accepting any of the given string-typed values.
// Empty values pass; 'required' handles those.
func oneOf[T ~string](allowed ...T) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[string(a)] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, ok := set[value]
		return ok
	}
}
