package crane

import "github.com/kbukum/liftkit/errors"

// Report summarises a fully evaluated context.
type Report struct {
	Hook               Hook           `json:"hook"`
	LiftingSpeed       float64        `json:"lifting_speed"`
	BetPhi             BetPhi         `json:"bet_phi"`
	DynamicCoefficient float64        `json:"dynamic_coefficient"`
	Bearing            Bearing        `json:"bearing"`
	TotalMass          float64        `json:"total_mass"`
	NetWeight          float64        `json:"net_weight"`
	AltLiftDevice      *AltLiftDevice `json:"alt_lift_device,omitempty"`
	HookVariants       int            `json:"hook_variants"`
	BearingVariants    int            `json:"bearing_variants"`
}

// NewReport reads the final slots of c. It fails if the chain has not
// reached LoadHandDeviceMass.
func NewReport(c Context) (Report, error) {
	mass, ok := Lookup[LoadHandDeviceMassCtx](c)
	if !ok {
		return Report{}, errors.MissingField(StageLoadHandDeviceMass)
	}
	in := Read[InitialCtx](c)
	return Report{
		Hook:               Read[UserHookCtx](c).Result,
		LiftingSpeed:       Read[LiftingSpeedCtx](c).Result,
		BetPhi:             Read[BetPhiCtx](c).Result,
		DynamicCoefficient: Read[DynamicCoefficientCtx](c).Result,
		Bearing:            Read[UserBearingCtx](c).Result,
		TotalMass:          mass.TotalMass,
		NetWeight:          mass.NetWeight,
		AltLiftDevice:      in.AltLiftDevice,
		HookVariants:       len(Read[HookFilterCtx](c).Result),
		BearingVariants:    len(Read[BearingFilterCtx](c).Result),
	}, nil
}
