package models

// ScheduleThird names the schedule carrying user-count retention thresholds.
const ScheduleThird = "Third Schedule"

// Entity classes recognised in the Third Schedule.
const (
	EntityClassEcommerce   = "ecommerce"
	EntityClassSocialMedia = "social_media"
	EntityClassGaming      = "gaming"
)

// ScheduleThreshold is a user-count trigger above which an entity class
// carries additional retention obligations. Unique per (schedule, entity class).
type ScheduleThreshold struct {
	ID             int64  `json:"id"`
	ScheduleName   string `json:"schedule_name"`
	EntityClass    string `json:"entity_class"`
	ThresholdUsers int64  `json:"threshold_users"`
	RetentionDays  int    `json:"retention_days"`
}

// Applies reports whether an organization with the given user count meets the threshold.
func (s *ScheduleThreshold) Applies(registeredUsers int64) bool {
	return registeredUsers >= s.ThresholdUsers
}
