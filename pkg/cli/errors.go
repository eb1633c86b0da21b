package cli

import "fmt"

// ConfigError reports an invalid or unloadable proxy configuration. Path
// names the config file it came from and is empty when the command was
// running on the built-in defaults.
type ConfigError struct {
	Path    string
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Path != "" && e.Field != "":
		return fmt.Sprintf("config error in %s, field %s: %s", e.Path, e.Field, e.Message)
	case e.Path != "":
		return fmt.Sprintf("config error in %s: %s", e.Path, e.Message)
	case e.Field != "":
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	default:
		return fmt.Sprintf("config error: %s", e.Message)
	}
}

// CommandError wraps a failure from one of the anvil subcommands.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("anvil %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError. Pass the config file path when
// one was loaded so the message points the operator at the right file.
func NewConfigError(path, field, message string) *ConfigError {
	return &ConfigError{
		Path:    path,
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}
