package cmd

// Middleware wraps a command (cooldowns, gates, logging).
type Middleware func(Command) Command

// Apply wraps c with mws. The first middleware runs innermost, the last outermost.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}
