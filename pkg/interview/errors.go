package interview

import "fmt"

// ConfigError reports a defect in the interview script itself, such as a
// step referencing an unknown question. It is fatal to the update call
// and is never surfaced as a user input error.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}
