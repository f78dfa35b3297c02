package content

func koreanPack() Pack {
	return Pack{
		Titles: map[string][]string{
			"supp/gentle/warm":  {"곧 영양제 드실 시간이에요", "다음 복용 시간이 다가와요"},
			"supp/gentle/cheer": {"비타민 타임 곧 시작!", "영양제 미리 챙겨두세요"},
			"supp/gentle/brief": {"복용 예정"},
			"supp/nudge/warm":   {"영양제 잊지 마세요", "복용할 시간이에요"},
			"supp/nudge/cheer":  {"영양제 한 알, 아기가 고마워해요", "복용 체크!"},
			"supp/nudge/brief":  {"복용 시간"},
			"supp/urgent/warm":  {"아직 영양제를 안 드셨어요", "놓친 복용을 챙겨주세요"},
			"supp/urgent/cheer": {"영양제가 기다리고 있어요!", "지금 바로 챙겨요"},
			"supp/urgent/brief": {"복용 지연"},

			"work/gentle/warm":  {"좋은 아침이에요, 출근 기록 잊지 마세요"},
			"work/gentle/cheer": {"오늘도 출근 체크!"},
			"work/gentle/brief": {"근무 기록"},
			"work/nudge/warm":   {"오늘 근무 기록이 비어 있어요", "오늘 출근하셨나요?"},
			"work/nudge/cheer":  {"한 번 탭으로 기록 끝!"},
			"work/nudge/brief":  {"출근 기록"},
			"work/urgent/warm":  {"오늘 근무 시간을 기록해 주세요"},
			"work/urgent/cheer": {"퇴근 전 마지막 체크!"},
			"work/urgent/brief": {"근무 기록 누락"},

			"mood/gentle/warm":  {"오늘 기분은 어떠세요?"},
			"mood/gentle/cheer": {"기분 체크 타임!"},
			"mood/gentle/brief": {"기분 기록"},
			"mood/nudge/warm":   {"오후는 어떻게 보내고 계세요?"},
			"mood/nudge/cheer":  {"오후 기분 체크!"},
			"mood/nudge/brief":  {"기분 미기록"},
			"mood/urgent/warm":  {"잠들기 전, 오늘 하루는 어땠나요?"},
			"mood/urgent/cheer": {"자기 전 한 번만 탭!"},
			"mood/urgent/brief": {"오늘 기분 미기록"},

			"plan/gentle/warm":  {"곧 있을 일정: {title}"},
			"plan/gentle/cheer": {"다음 일정: {title}!"},
			"plan/gentle/brief": {"예정된 일정"},
			"plan/nudge/warm":   {"{title} 시간이에요"},
			"plan/nudge/cheer":  {"이제 {title} 할 시간!"},
			"plan/nudge/brief":  {"일정 시간"},
			"plan/urgent/warm":  {"{title}이(가) 아직 남아 있어요"},
			"plan/urgent/cheer": {"{title} 마무리해요!"},
			"plan/urgent/brief": {"지난 일정"},
		},
		Bodies: map[string][]string{
			"supp/gentle": {"{time}에 {names}. 오늘 {remaining}회 남았어요."},
			"supp/nudge":  {"지금 복용: {names}. 오늘 {remaining}회 남았어요."},
			"supp/urgent": {"{overdue}회 지났어요: {names}."},
			"work/gentle": {"시간 날 때 오늘 근무를 기록해 주세요."},
			"work/nudge":  {"오늘 근무 기록이 아직 없어요."},
			"work/urgent": {"하루가 거의 끝났어요. 잊기 전에 기록해요."},
			"mood/gentle": {"{window} 기분을 잠깐 기록해요."},
			"mood/nudge":  {"{window}은 어떻게 지내고 계세요?"},
			"mood/urgent": {"꾸준한 기록이 변화를 알아보는 데 도움이 돼요."},
			"plan/gentle": {"{title} {when}."},
			"plan/nudge":  {"{title} {when}."},
			"plan/urgent": {"{title} ({when}) 완료 표시하거나 옮겨 주세요."},
		},
		Labels: map[string]string{
			"window.noon":      "점심",
			"window.afternoon": "오후",
			"window.night":     "저녁",
			"when.in":          "{n}분 후",
			"when.now":         "지금",
			"when.late":        "{n}분 전",
			"when.daysAgo":     "{n}일 전",
			"when.today":       "오늘",
			"join":             ", ",
			"tip.title":        "오늘의 팁",
			"name.title":       "이름 추천: {name}",
			"name.body":        "{name}: {meaning}",
			"plan.untitled":    "제목 없는 일정",
		},
		Tips: []string{
			"물을 자주 조금씩 마셔 주세요.",
			"가벼운 산책은 붓기와 수면에 도움이 돼요.",
			"입덧이 있다면 머리맡에 간식을 두세요.",
			"왼쪽으로 누워 자면 혈액 순환에 좋아요.",
			"다음 검진 때 물어볼 것을 메모해 두세요.",
		},
		Names: []Name{
			{Name: "서아", Meaning: "상서로울 서, 아름다울 아"},
			{Name: "하준", Meaning: "여름 하, 준걸 준"},
			{Name: "지우", Meaning: "지혜 지, 도울 우"},
			{Name: "도윤", Meaning: "길 도, 윤택할 윤"},
			{Name: "하윤", Meaning: "여름 하, 윤택할 윤"},
		},
		MoodActions: []MoodAction{
			{Code: "good", Label: "좋아요"},
			{Code: "okay", Label: "보통"},
			{Code: "low", Label: "힘들어요"},
		},
	}
}
