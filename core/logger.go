package core

// Logger is any service that can report app events and errors.
//
// expected args fmt: error, map[string]interface{}, session.Session
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
