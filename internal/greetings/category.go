package greetings

// Category pairs an external token with the value stored in the greetings table.
type Category struct {
	Token string
	Value string
}

// Unrecognized is rendered for rows whose stored category is null or unknown.
const Unrecognized = "unrecognized"

// registry is in declaration order. Responses that list categories keep this order.
var registry = []Category{
	{"Birthday_Boyfriend", "birthday_boyfriend_message"},
	{"Birthday_Girlfriend", "birthday_girlfriend_message"},
	{"Birthday_Love", "birthday_love_message"},
	{"Birthday_Wife", "birthday_wife_message"},
	{"Birthday_Bestfriend", "birthday-bestfriend-messages"},
	{"Birthday_Brother", "birthday-to-brother-messages"},
	{"Birthday_Dad", "birthday-to-dad-messages"},
	{"Birthday_Mom", "birthday-to-mom-messages"},
	{"Birthday_Sister", "birthday-to-sister-messages"},
	{"Christmas_Boyfriend", "christmas-message-to-boyfriend"},
	{"Christmas_Girlfriend", "christmas-message-to-girlfriend"},
	{"Christmas_General", "christmas-messages"},
	{"Morning_Romantic", "morning-romantic"},
}

var (
	byToken = make(map[string]Category, len(registry))
	byValue = make(map[string]Category, len(registry))
)

func init() {
	for _, c := range registry {
		byToken[c.Token] = c
		byValue[c.Value] = c
	}
}

// Resolve looks up a category by its exact, case-sensitive token.
func Resolve(token string) (Category, error) {
	c, ok := byToken[token]
	if !ok {
		return Category{}, errUnknownCategory(token)
	}
	return c, nil
}

// TokenForValue maps a stored value back to its token.
func TokenForValue(value string) (string, bool) {
	c, ok := byValue[value]
	return c.Token, ok
}

// TokensForValues returns the tokens whose storage value appears in values.
func TokensForValues(values []string) []string {
	present := make(map[string]bool, len(values))
	for _, v := range values {
		present[v] = true
	}

	tokens := make([]string, 0, len(values))
	for _, c := range registry {
		if present[c.Value] {
			tokens = append(tokens, c.Token)
		}
	}
	return tokens
}

// Tokens returns every known token.
func Tokens() []string {
	tokens := make([]string, len(registry))
	for i, c := range registry {
		tokens[i] = c.Token
	}
	return tokens
}
