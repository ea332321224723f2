// Package method books classifier methods by name. The builtin table carries
// the tuned boosted-decision-tree and deep-network configurations of the
// tri-lepton analysis.
package method

import (
	"strconv"
	"strings"
)

// DefaultMethods is the method list used when none is requested.
const DefaultMethods = "BDTG,BDTG_ST,BDTG225,BDTGt1,BDTG_TT,BDTGt2"

var bdtOptions = map[string]string{
	"BDTG":    "!H:!V:NTrees=200:MinNodeSize=5%:BoostType=Grad:Shrinkage=0.50:SeparationType=GiniIndex:nCuts=15:MaxDepth=3:NegWeightTreatment=Pray",
	"BDTG225": "!H:!V:NTrees=225:MinNodeSize=5%:BoostType=Grad:Shrinkage=0.30:UseBaggedBoost:BaggedSampleFraction=0.5:SeparationType=GiniIndex:nCuts=20:MaxDepth=3:NegWeightTreatment=Pray",
	"BDTGt1":  "!H:!V:NTrees=400:MinNodeSize=5%:BoostType=Grad:Shrinkage=0.50:SeparationType=GiniIndex:nCuts=20:MaxDepth=5:NegWeightTreatment=Pray",
	"BDTG_ST": "!H:!V:NTrees=200:MinNodeSize=5%:BoostType=Grad:Shrinkage=0.50:SeparationType=GiniIndex:nCuts=15:MaxDepth=3:NegWeightTreatment=Pray",
	"BDTG_TT": "!H:!V:NTrees=200:MinNodeSize=5%:BoostType=Grad:Shrinkage=0.50:SeparationType=GiniIndex:nCuts=20:MaxDepth=5:NegWeightTreatment=Pray",
	"BDTGt2":  "!H:!V:NTrees=400:MinNodeSize=5%:BoostType=Grad:Shrinkage=0.20:SeparationType=GiniIndex:UseBaggedBoost:BaggedSampleFraction=0.8:nCuts=15:MaxDepth=3:NegWeightTreatment=Pray",
	"BDT":     adaBoost(400),
	"BDT200":  adaBoost(200),
	"BDT100":  adaBoost(100),
	"BDT850":  adaBoost(850),
	"BDT50":   adaBoost(50),
}

func adaBoost(trees int) string {
	return "!H:!V:NTrees=" + strconv.Itoa(trees) + ":MinNodeSize=5%:MaxDepth=3:BoostType=AdaBoost:AdaBoostBeta=0.5:SeparationType=GiniIndex:nCuts=20:NegWeightTreatment=Pray"
}

// Architecture selects the DNN backend.
type Architecture string

const (
	CPU Architecture = "CPU"
	GPU Architecture = "GPU"
)

const dnnLayout = "Layout=TANH|128,TANH|128,TANH|128,LINEAR"

var (
	dnnBase         = "!H:V:ErrorStrategy=CROSSENTROPY:VarTransform=N:WeightInitialization=XAVIERUNIFORM"
	dnnStrategyBase = []string{"Repetitions=1", "ConvergenceSteps=20", "Regularization=L2", "BatchSize=256", "TestRepetitions=10", "Multithreading=True"}
	dnnSteps        = [][]string{
		{"LearningRate=1e-1", "WeightDecay=1e-4", "Momentum=0.9"},
		{"LearningRate=1e-2", "WeightDecay=1e-4", "Momentum=0.9"},
		{"LearningRate=1e-3", "WeightDecay=1e-4", "Momentum=0.0"},
	}
	dnnDropConfig = []string{"DropConfig=0.0+0.5+0.5+0.5", "DropConfig=0.0+0.0+0.0+0.0", "DropConfig=0.0+0.0+0.0+0.0"}
)

// TrainingStrategy renders the three-step DNN training strategy.
func TrainingStrategy() string {
	steps := make([]string, 0, len(dnnSteps))
	for _, step := range dnnSteps {
		parts := make([]string, 0, len(dnnStrategyBase)+len(step)+len(dnnDropConfig))
		parts = append(parts, dnnStrategyBase...)
		parts = append(parts, step...)
		parts = append(parts, dnnDropConfig...)
		steps = append(steps, strings.Join(parts, ","))
	}
	return "TrainingStrategy=" + strings.Join(steps, "|")
}

// DNNOptions assembles the option string for one architecture.
func DNNOptions(arch Architecture) string {
	return strings.Join([]string{dnnBase, dnnLayout, TrainingStrategy(), "Architecture=" + string(arch)}, ":")
}

// Builtin returns a registry holding every analysis method.
func Builtin() *Registry {
	r := NewRegistry()
	for name, opts := range bdtOptions {
		name, opts := name, opts
		r.MustRegister(name, func() (Booking, error) {
			return Booking{Name: name, Type: TypeBDT, Options: opts}, nil
		})
	}
	for _, arch := range []Architecture{CPU, GPU} {
		arch := arch
		name := "DNN_" + string(arch)
		r.MustRegister(name, func() (Booking, error) {
			return Booking{Name: name, Type: TypeDNN, Options: DNNOptions(arch)}, nil
		})
	}
	return r
}
