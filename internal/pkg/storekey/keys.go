// Package storekey names every key the session and durable tiers hold.
package storekey

const prefix = "kindred:"

func Session(sessionID string) string       { return prefix + "session:" + sessionID }
func Profile(sessionID string) string       { return prefix + "profile:" + sessionID }
func ProfileBackup(sessionID string) string { return prefix + "profile:" + sessionID + ":backup" }
func Decisions(sessionID string) string     { return prefix + "decisions:" + sessionID }
func MutualMatches(sessionID string) string { return prefix + "mutual_matches:" + sessionID }
func Conversations(sessionID string) string { return prefix + "conversations:" + sessionID }
func Messages(sessionID string) string      { return prefix + "messages:" + sessionID }

// All returns every key owned by a session, used by reset and corruption
// recovery.
func All(sessionID string) []string {
	return []string{
		Session(sessionID),
		Profile(sessionID),
		ProfileBackup(sessionID),
		Decisions(sessionID),
		MutualMatches(sessionID),
		Conversations(sessionID),
		Messages(sessionID),
	}
}
