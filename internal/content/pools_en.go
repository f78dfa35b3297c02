package content

func englishPack() Pack {
	return Pack{
		Titles: map[string][]string{
			"supp/gentle/warm":  {"A little vitamin moment is coming up", "Your next dose is almost due"},
			"supp/gentle/cheer": {"Vitamin time soon!", "Get your supplements ready"},
			"supp/gentle/brief": {"Dose coming up", "Supplements soon"},
			"supp/nudge/warm":   {"Don't forget your supplements", "Time for your dose"},
			"supp/nudge/cheer":  {"Pill break! Baby says thanks", "Quick dose check"},
			"supp/nudge/brief":  {"Dose due", "Supplement reminder"},
			"supp/urgent/warm":  {"Your supplements are still waiting", "Please take the dose you missed"},
			"supp/urgent/cheer": {"Don't leave your vitamins hanging!", "Catch up on your doses now"},
			"supp/urgent/brief": {"Overdue dose", "Missed supplements"},

			"work/gentle/warm":  {"Good morning, remember your work log", "Working today?"},
			"work/gentle/cheer": {"New day, new log!", "Clock-in check"},
			"work/gentle/brief": {"Work log"},
			"work/nudge/warm":   {"Today's work log is still empty", "Did you work today?"},
			"work/nudge/cheer":  {"Quick tap to log your day", "Keep your streak going"},
			"work/nudge/brief":  {"Log attendance"},
			"work/urgent/warm":  {"Don't let today's hours slip away", "Log today's work before you rest"},
			"work/urgent/cheer": {"Last call for today's log!", "Wrap up the day with a log"},
			"work/urgent/brief": {"Attendance missing"},

			"mood/gentle/warm":  {"How are you feeling?", "A quick check-in"},
			"mood/gentle/cheer": {"Mood check!", "How's the bump today?"},
			"mood/gentle/brief": {"Log your mood"},
			"mood/nudge/warm":   {"How has your afternoon been?", "Take a breath and check in"},
			"mood/nudge/cheer":  {"Afternoon mood check!", "Tell us about your day"},
			"mood/nudge/brief":  {"Mood not logged"},
			"mood/urgent/warm":  {"Before bed, how was today?", "End the day with a check-in"},
			"mood/urgent/cheer": {"One tap before sleep!", "Wrap today with a mood"},
			"mood/urgent/brief": {"Mood missing today"},

			"plan/gentle/warm":  {"Coming up: {title}", "On your plan today"},
			"plan/gentle/cheer": {"Next up: {title}!", "Plan ahead"},
			"plan/gentle/brief": {"Upcoming plan"},
			"plan/nudge/warm":   {"{title} is due", "Time for {title}"},
			"plan/nudge/cheer":  {"It's go time: {title}", "Let's do {title}"},
			"plan/nudge/brief":  {"Plan due"},
			"plan/urgent/warm":  {"{title} is still open", "An unfinished plan is waiting"},
			"plan/urgent/cheer": {"Let's close out {title}!", "Finish what you started"},
			"plan/urgent/brief": {"Overdue plan"},
		},
		Bodies: map[string][]string{
			"supp/gentle": {"{names} at {time}. {remaining} left today.", "Next dose in {next} min: {names}."},
			"supp/nudge":  {"Due now: {names}. {remaining} left today.", "{names} is waiting for you."},
			"supp/urgent": {"{overdue} overdue: {names}.", "It's getting late. {remaining} doses left today."},
			"work/gentle": {"Log today's attendance when you get a moment."},
			"work/nudge":  {"Today's work log is still empty.", "Did you go in today? Tap to log it."},
			"work/urgent": {"The day is almost over. Log today's hours before you forget."},
			"mood/gentle": {"Take a second to log your {window} mood."},
			"mood/nudge":  {"How are you holding up this {window}?"},
			"mood/urgent": {"A quick mood log helps spot patterns over the weeks."},
			"plan/gentle": {"{title} {when}.", "{count} plans left today."},
			"plan/nudge":  {"{title} {when}.", "{title} was planned for {time}."},
			"plan/urgent": {"{title} is still open ({when}).", "Mark {title} done or move it."},
		},
		Labels: map[string]string{
			"window.noon":      "lunchtime",
			"window.afternoon": "afternoon",
			"window.night":     "evening",
			"when.in":          "in {n} min",
			"when.now":         "now",
			"when.late":        "{n} min ago",
			"when.daysAgo":     "from {n} days ago",
			"when.today":       "today",
			"join":             ", ",
			"tip.title":        "Today's tip",
			"name.title":       "Name spotlight: {name}",
			"name.body":        "{name}: {meaning}",
			"plan.untitled":    "Untitled plan",
		},
		Tips: []string{
			"Sip water through the day; aim for a glass every hour or two.",
			"Short walks help with swelling and sleep.",
			"Keep a snack by the bed for early-morning nausea.",
			"Sleeping on your left side can improve circulation.",
			"Write down questions for your next checkup as they come up.",
			"Stretch your calves before bed to ease cramps.",
		},
		Names: []Name{
			{Name: "Ava", Meaning: "life"},
			{Name: "Noah", Meaning: "rest, comfort"},
			{Name: "Mia", Meaning: "beloved"},
			{Name: "Leo", Meaning: "lion"},
			{Name: "Iris", Meaning: "rainbow"},
			{Name: "Theo", Meaning: "gift of God"},
		},
		MoodActions: []MoodAction{
			{Code: "good", Label: "Good"},
			{Code: "okay", Label: "Okay"},
			{Code: "low", Label: "Low"},
		},
	}
}
