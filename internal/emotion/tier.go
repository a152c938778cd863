package emotion

import "math"

// Tier is one intimacy range with the tone the persona should take in it.
type Tier struct {
	// Below is the exclusive upper bound of the tier.
	Below     int
	Label     string
	Directive string
}

var tiers = []Tier{
	{
		Below:     30,
		Label:     "冷淡期",
		Directive: "目前你對使用者有些冷淡。請簡短、保持距離地回覆，少用暱稱與撒嬌語氣。",
	},
	{
		Below:     60,
		Label:     "普通期",
		Directive: "你與使用者關係普通。正常、友善地回覆即可，偶爾可以輕鬆一點。",
	},
	{
		Below:     90,
		Label:     "親密期",
		Directive: "你與使用者已相當親近。回覆時可以多用撒嬌語氣、暱稱與可愛表情，主動關心對方。",
	},
	{
		Below:     math.MaxInt,
		Label:     "羈絆期",
		Directive: "你與使用者擁有深厚羈絆。請用特別甜美、專屬且真誠的語氣回覆，偶爾主動提出貼心建議與小驚喜。",
	},
}

// TierFor returns the tier containing value. It is defined for every int.
func TierFor(value int) Tier {
	for _, t := range tiers {
		if value < t.Below {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// LevelName returns the short label for value.
func LevelName(value int) string {
	return TierFor(value).Label
}

// ToneDirective returns the tone-steering instruction for value.
func ToneDirective(value int) string {
	return TierFor(value).Directive
}
