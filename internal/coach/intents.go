// Package coach selects review material and talks to the downstream
// coaching text generator. The generator itself is opaque: this side only
// assembles payloads and records what comes back.
package coach

// Intent is what the player wants to work on this session.
type Intent string

const (
	IntentLaning           Intent = "laning"
	IntentMacro            Intent = "macro"
	IntentTeamfighting     Intent = "teamfighting"
	IntentDyingLess        Intent = "dying_less"
	IntentClimbing         Intent = "climbing"
	IntentChampionSpecific Intent = "champion_specific"
	IntentMental           Intent = "mental"
	IntentGeneral          Intent = "general"
)

// ParseIntent maps free-form input to a known intent, defaulting to
// general.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentLaning, IntentMacro, IntentTeamfighting, IntentDyingLess,
		IntentClimbing, IntentChampionSpecific, IntentMental:
		return Intent(s)
	default:
		return IntentGeneral
	}
}
