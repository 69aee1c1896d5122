package feedback

// Config tunes the feedback request.
type Config struct {
	MaxTokens   int // reply budget
	Temperature float64
}

func DefaultConfig() Config { return Config{MaxTokens: 768, Temperature: 0.3} }
