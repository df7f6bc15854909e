package chat

// Category tags bot messages so the frontend can pick a display icon.
// It carries no behavioral weight anywhere else.
type Category string

const (
	CategoryGreeting        Category = "greeting"
	CategoryMentalHealth    Category = "mental_health"
	CategorySleep           Category = "sleep"
	CategorySocial          Category = "social"
	CategorySetup           Category = "setup"
	CategoryGeneralWellness Category = "general_wellness"
	CategoryError           Category = "error"
)
