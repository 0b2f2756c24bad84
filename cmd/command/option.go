package command

import "io"

//Option customises the command service.
type Option func(s *Service)

//WithOutput sets the writer command output goes to.
func WithOutput(output io.Writer) Option {
	return func(s *Service) {
		s.output = output
	}
}
