// Package appconf holds application-level configuration shared by the
// command-line entry point and the library packages.
package appconf

// Environment describes the runtime environment of the process.
type Environment int

const (
	Test Environment = iota
	Development
	Production
)

// String returns the lowercase name of the environment.
func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps a -env flag value to an Environment.
// Unrecognized values fall back to Development.
func EnvFlagToEnvironment(flag string) Environment {
	switch flag {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}
