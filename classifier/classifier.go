// Package classifier decides whether a completion is the closing profile
// summary of a matchmaking conversation.
//
// Five topic detectors each fire when the lower-cased text contains any of
// their trigger phrases as a substring. A text is a summary when it is not
// empty, the personality detector fires, at least one of partner or
// must-have fires, and at least one of steps or song fires.
package classifier

import "strings"

type Topic string

const (
	TopicPersonality Topic = "personality"
	TopicPartner     Topic = "partner"
	TopicMustHave    Topic = "mustHave"
	TopicSteps       Topic = "steps"
	TopicSong        Topic = "song"
)

type Detector struct {
	Topic Topic
	// Phrases are lower case.
	Phrases []string
}

// Fires reports whether any phrase occurs in lower, which must already be
// lower case.
func (d Detector) Fires(lower string) bool {
	for _, p := range d.Phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

var Detectors = []Detector{
	{
		Topic:   TopicPersonality,
		Phrases: []string{"based on our conversation", "personality", "you come across as", "from our discussion", "what i've learned about you"},
	},
	{
		Topic:   TopicPartner,
		Phrases: []string{"ideal partner", "partner traits", "perfect match", "compatible with", "in a partner"},
	},
	{
		Topic:   TopicMustHave,
		Phrases: []string{"must-have", "must have", "essential qualities", "key traits", "non-negotiable"},
	},
	{
		Topic:   TopicSteps,
		Phrases: []string{"next step", "moving forward", "practical advice", "what to look for", "when meeting someone"},
	},
	{
		Topic:   TopicSong,
		Phrases: []string{"song", "music", "playlist", "track", "listen to"},
	},
}

type Verdict struct {
	HasPersonality bool `json:"hasPersonality"`
	HasPartner     bool `json:"hasPartner"`
	HasMustHave    bool `json:"hasMustHave"`
	HasSteps       bool `json:"hasSteps"`
	HasSong        bool `json:"hasSong"`
	IsSummary      bool `json:"isSummary"`
}

func (v *Verdict) set(t Topic, fired bool) {
	switch t {
	case TopicPersonality:
		v.HasPersonality = fired
	case TopicPartner:
		v.HasPartner = fired
	case TopicMustHave:
		v.HasMustHave = fired
	case TopicSteps:
		v.HasSteps = fired
	case TopicSong:
		v.HasSong = fired
	}
}

// Classify never fails: every text, including the empty string, has a verdict.
func Classify(text string) (v Verdict) {
	// strings.ToLower folds U+0130 (İ) to a plain "i", so "PERSONALİTY" fires.
	lower := strings.ToLower(text)
	for _, d := range Detectors {
		v.set(d.Topic, d.Fires(lower))
	}
	v.IsSummary = isSummary(text != "", v)
	return v
}

func isSummary(nonEmpty bool, v Verdict) bool {
	return nonEmpty &&
		v.HasPersonality &&
		(v.HasPartner || v.HasMustHave) &&
		(v.HasSteps || v.HasSong)
}
