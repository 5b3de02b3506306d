package lexicon

// fillers is the closed set of discourse fillers, stored as Core forms.
var fillers = map[string]bool{
	"ну":         true,
	"вот":        true,
	"типа":       true,
	"короче":     true,
	"кароче":     true,
	"значит":     true,
	"просто":     true,
	"вообще":     true,
	"блин":       true,
	"слушай":     true,
	"собственно": true,
	"эээ":        true,
	"ээ":         true,
	"эм":         true,
	"хм":         true,
	"ммм":        true,
}

// shortenings maps long adverbs and adjectives to short synonyms.
// Keys are lowercase Cyrillic-only forms.
var shortenings = map[string]string{
	"абсолютно":      "точно",
	"совершенно":     "вовсе",
	"действительно":  "правда",
	"невероятно":     "очень",
	"обязательно":    "точно",
	"естественно":    "конечно",
	"разумеется":     "конечно",
	"практически":    "почти",
	"приблизительно": "около",
	"необходимо":     "надо",
	"немедленно":     "сразу",
	"замечательно":   "класс",
	"потрясающе":     "круто",
	"фантастически":  "супер",
	"чрезвычайно":    "очень",
	"исключительно":  "только",
	"представляешь":  "прикинь",
	"понимаешь":      "знаешь",
	"пожалуйста":     "прошу",
	"невозможно":     "нельзя",
	"интересный":     "любопытный",
	"удивительный":   "странный",
	"замечательный":  "классный",
	"потрясающий":    "крутой",
}
