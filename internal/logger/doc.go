// Package logger provides named zap loggers whose levels are chosen by name
// or glob pattern.
//
//	reg, err := logger.New(logger.Config{
//		DefaultLevel: "warn",
//		Levels:       []logger.NamedLevel{{Name: "engine*", Level: "debug"}},
//	})
//	log := reg.Named("engine")
package logger
