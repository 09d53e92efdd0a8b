// Package logger wraps zerolog with the structured fields used across the
// bus and the evaluation pipeline.
//
// Components obtain a tagged logger once and log with field maps:
//
//	log := logger.WithComponent("bus.switch").WithFields(logger.Fields(logger.FieldEndpoint, name))
//	log.Debug("[BUS_SWITCH] subscriber registered", logger.Fields(logger.FieldGeneration, gen))
package logger
