package nlp

// Ukrainian function words and portal boilerplate ignored by Tokenize.
// Entries shorter than MinTokenLength are never reached and are omitted.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"але", "або", "адже", "без", "біля", "буде", "будуть", "був", "була", "були", "було",
		"бути", "вам", "вас", "весь", "вже", "від", "він", "вона", "вони", "воно", "всі",
		"всіх", "втім", "для", "дуже", "його", "йому", "якого", "якої", "якому", "якій",
		"якщо", "яких", "який", "яка", "яке", "які", "коли", "кого", "крім", "між", "мені",
		"мене", "мною", "має", "мають", "може", "можуть", "нам", "нас", "наш", "наша", "наше",
		"наші", "неї", "нею", "них", "ним", "ними", "нього", "ній", "однак", "після", "перед",
		"понад", "поки", "при", "про", "проте", "під", "саме", "свою", "своє", "свої", "свого",
		"своїх", "себе", "собі", "також", "так", "там", "тих", "тим", "тією", "тільки", "того",
		"тому", "той", "тоді", "треба", "тут", "цей", "цього", "цьому", "цим", "цих", "через",
		"чим", "чого", "щоб", "щодо", "яку", "яким", "якими", "зокрема", "зараз", "знову",
		"навіть", "лише", "своїм", "своєї", "році", "року", "роки", "років", "рік", "наразі",
		"серед", "близько", "читайте", "фото", "джерело", "повідомляє", "повідомили",
		"зазначив", "зазначила", "зазначили", "заявив", "заявила", "сказав", "сказала", "тис",
		"млн", "млрд", "грн", "січня", "лютого", "березня", "квітня", "травня", "червня",
		"липня", "серпня", "вересня", "жовтня", "листопада", "грудня",
	} {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether the lowercased token is ignored by Tokenize
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
