package mcpserver

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLimit caps the top_prospects limit.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}
