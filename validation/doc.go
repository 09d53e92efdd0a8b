// Package validation checks configuration sections and initial calculation
// data before they reach the pipeline.
//
// Struct tag validation uses go-playground/validator:
//
//	type Hook struct {
//	    Gost   string  `json:"gost" validate:"required"`
//	    Weight float64 `json:"weight" validate:"gt=0"`
//	}
//	err := validation.Validate(hook)
//
// Programmatic validation collects field errors:
//
//	v := validation.New()
//	v.PositiveDuration("bus.poll_timeout", cfg.PollTimeout)
//	err := v.Validate()
package validation
