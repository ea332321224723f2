package tmva

import (
	"fmt"

	"github.com/tzwi/fcncmva/internal/dataset"
	"github.com/tzwi/fcncmva/internal/method"
	"github.com/tzwi/fcncmva/internal/physics"
	"github.com/tzwi/fcncmva/internal/quota"
)

// Plan carries the selection-dependent inputs of a run.
type Plan struct {
	Channels []physics.Channel
	UserCut  string
	Quota    quota.Quota
	Methods  []method.Booking
}

// Assemble drives e through a complete run: inputs, weights, samples, cuts
// with the split quota, then method bookings.
func Assemble(e Engine, res *dataset.Result, plan Plan, reg *Registrar) (SampleStats, error) {
	if len(plan.Channels) == 0 {
		return SampleStats{}, fmt.Errorf("tmva: no channels selected")
	}
	for _, v := range physics.Variables(plan.Channels) {
		e.AddVariable(v)
	}
	for _, s := range physics.Spectators {
		e.AddSpectator(s)
	}
	e.SetWeightExpressions(physics.EventWeight, physics.EventWeight)

	stats, err := reg.Register(e, res)
	if err != nil {
		return stats, err
	}

	e.PrepareTrainingAndTestTree(physics.SelectCuts(plan.Channels, plan.UserCut), plan.Quota.Options())
	for _, b := range plan.Methods {
		e.BookMethod(b)
	}
	return stats, nil
}
