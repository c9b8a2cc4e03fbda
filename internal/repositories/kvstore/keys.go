package kvstore

import "fmt"

// Key layout of the local store. Auth keys keep the historical names the
// mobile app used; user and record collections are stored per-record rather
// than as one serialized array.
const (
	// KeyCurrentUser holds the public projection of the signed-in user.
	KeyCurrentUser = "@auth_store"
	// KeySession holds the single active session record.
	KeySession = "@auth_session"
	// KeySigningSecret holds the session-token signing secret, generated on
	// first use.
	KeySigningSecret = "@auth_secret"
)

// UserKey addresses a permanent user record by id.
func UserKey(userID string) string {
	return "user:" + userID
}

// EmailIndexKey maps an email (exact, case-sensitive) to a user id.
func EmailIndexKey(email string) string {
	return "user_email:" + email
}

// SaltKey addresses a user's password salt, stored apart from the record.
func SaltKey(userID string) string {
	return "@auth_salt_" + userID
}

// ResetCodeKey addresses the outstanding password reset code for an email.
func ResetCodeKey(email string) string {
	return "reset_code_" + email
}

// RecordKey addresses a single expense/income record of a user.
func RecordKey(kind, userID, recordID string) string {
	return fmt.Sprintf("%s:%s:%s", kind, userID, recordID)
}

// RecordPrefix is the scan prefix for one user's records of one kind.
func RecordPrefix(kind, userID string) string {
	return fmt.Sprintf("%s:%s:", kind, userID)
}

// PlanKey addresses a user's budget/savings plan.
func PlanKey(userID string) string {
	return "plan:" + userID
}
