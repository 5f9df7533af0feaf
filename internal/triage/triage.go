// Package triage maps symptom transcripts to advice via an ordered keyword
// table. Matching is first-hit-wins over the fixed table order, which makes
// multi-symptom transcripts deterministic.
package triage

import "strings"

// Entry pairs a symptom keyword with its condition label and advice text.
type Entry struct {
	Keyword   string
	Condition string
	Advice    string
}

// Match is the outcome of a table scan. A zero Match never occurs; misses
// return the fixed unknown entry instead.
type Match struct {
	Condition string
	Advice    string
	Known     bool
}

const (
	// UnknownCondition is returned when no keyword matches the transcript.
	UnknownCondition = "unknown condition"

	unknownAdvice = "Please describe your symptoms clearly, for example: 'I have a fever and cough.'"
)

// Table is the static symptom table, scanned in declaration order.
// Note: "body pain" is shadowed by "pain" earlier in the table and can never
// match; the order is load-bearing and must not be "fixed" by reordering.
var Table = []Entry{
	{"fever", "fever", "You might have a viral infection or flu. Stay hydrated, rest, and take paracetamol if needed."},
	{"cough", "cough", "It sounds like a respiratory infection. Drink warm fluids and consider steam inhalation."},
	{"cold", "cold", "You may be having a common cold. Rest, drink fluids, and use a saline nasal spray if congested."},
	{"headache", "headache", "It could be due to dehydration or stress. Drink water and take a mild pain reliever if necessary."},
	{"stomach", "stomach", "This could indicate indigestion or food poisoning. Avoid heavy meals and stay hydrated."},
	{"pain", "pain", "Pain can have many causes. Apply ice if it’s swelling, or rest if it’s muscular pain."},
	{"body pain", "body pain", "It may be due to viral fever or overexertion. Rest and hydrate well."},
	{"rash", "rash", "Rashes may be allergic reactions. Avoid scratching and consult a dermatologist if it spreads."},
	{"fracture", "fracture", "It sounds serious. Avoid movement and visit an emergency clinic immediately."},
	{"breathing", "breathing", "Breathing difficulty can be serious. Please seek emergency medical help right away."},
	{"vomit", "vomit", "You may have a stomach infection. Drink electrolyte solutions and avoid solid food for a few hours."},
	{"burn", "burn", "Apply cool water to the burn area and avoid applying toothpaste or oils. Visit a clinic if it’s severe."},
}

// MatchText scans the table in order and returns the first entry whose
// keyword appears in the transcript, case-insensitively. It always returns
// a usable value.
func MatchText(text string) Match {
	lowered := strings.ToLower(text)
	for _, e := range Table {
		if strings.Contains(lowered, e.Keyword) {
			return Match{Condition: e.Condition, Advice: e.Advice, Known: true}
		}
	}
	return Match{Condition: UnknownCondition, Advice: unknownAdvice}
}
