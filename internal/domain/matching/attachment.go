package matching

import "kindred/internal/domain/assessment"

type attachmentCell struct {
	score       int
	explanation string
}

// attachmentMatrix is indexed [user][candidate] and is not symmetric:
// stability on one side offsets instability on the other, while two
// unstable styles compound.
var attachmentMatrix = map[assessment.AttachmentStyle]map[assessment.AttachmentStyle]attachmentCell{
	assessment.AttachmentSecure: {
		assessment.AttachmentSecure:       {95, "Both partners bring secure attachment: trust and closeness come naturally"},
		assessment.AttachmentAnxious:      {85, "Your security can steady their need for reassurance"},
		assessment.AttachmentAvoidant:     {80, "Your consistency gives them room to open up at their own pace"},
		assessment.AttachmentDisorganized: {70, "Your stability helps, but their mixed signals will need patience"},
	},
	assessment.AttachmentAnxious: {
		assessment.AttachmentSecure:       {88, "Their steadiness can calm your worries about closeness"},
		assessment.AttachmentAnxious:      {45, "Two partners seeking reassurance can amplify each other's worries"},
		assessment.AttachmentAvoidant:     {30, "Classic pursue-withdraw pattern: your need for closeness may trigger their distance"},
		assessment.AttachmentDisorganized: {35, "Unpredictable closeness may heighten your anxiety"},
	},
	assessment.AttachmentAvoidant: {
		assessment.AttachmentSecure:       {82, "Their security can make intimacy feel safe rather than confining"},
		assessment.AttachmentAnxious:      {35, "Their need for closeness may feel overwhelming to you"},
		assessment.AttachmentAvoidant:     {50, "You will respect each other's space, but emotional distance can grow"},
		assessment.AttachmentDisorganized: {40, "Mixed signals meet withdrawal: connection will take deliberate effort"},
	},
	assessment.AttachmentDisorganized: {
		assessment.AttachmentSecure:       {75, "Their consistency offers a stable base to build trust"},
		assessment.AttachmentAnxious:      {40, "Both of you may struggle to feel settled in the relationship"},
		assessment.AttachmentAvoidant:     {38, "Their distance can deepen uncertainty about where you stand"},
		assessment.AttachmentDisorganized: {30, "Shared instability makes predictable intimacy hard to sustain"},
	},
}

// ScoreAttachment looks up the attachment pairing. Directionality is
// preserved: ScoreAttachment(a, b) need not equal ScoreAttachment(b, a).
func ScoreAttachment(user, candidate *assessment.AttachmentResult) DimensionScore {
	if user == nil || candidate == nil {
		return neutral()
	}
	row, ok := attachmentMatrix[user.Style]
	if !ok {
		return neutral()
	}
	cell, ok := row[candidate.Style]
	if !ok {
		return neutral()
	}
	return DimensionScore{Score: cell.score, Explanation: cell.explanation}
}
