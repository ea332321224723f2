package physics

// Variable is a classifier input booked with the engine.
type Variable struct {
	Expression string `yaml:"expression"`
	Title      string `yaml:"title"`
	Unit       string `yaml:"unit,omitempty"`
	Type       string `yaml:"type"`
}

// EventWeight is the per-event weight expression applied to both signal and
// background trees: nominal LHE scale weight, generator sign, pileup, b-tag,
// trigger and lepton scale factors.
const EventWeight = "LHEScaleWeight[4]*genWeight/abs(genWeight)*puWeight*BtagWeight*Trigger_SF*Electron_SF*MuonID_SF*MuonISO_SF"

const (
	ttCut = "HLT == 1 && TMath::Abs(Z_mass-91.2) < 7.5 && nGoodJet >= 2 && nGoodJet <= 3 && nBjet >= 1 && TMath::Abs(GoodLeptonCode) == 111 && nGoodLepton == 3 && LeadingLepton_pt > 25 && Z_charge == 0 && W_MT <= 300"
	stCut = "HLT == 1 && TMath::Abs(Z_mass-91.2) < 7.5 && nGoodJet == 1 && nBjet == 1 && TMath::Abs(GoodLeptonCode) == 111 && nGoodLepton == 3 && LeadingLepton_pt > 25 && Z_charge == 0 && W_MT <= 300"
)

var ttVariables = []Variable{
	{Expression: "Z_mass", Title: "Z mass", Type: "F"},
	{Expression: "W_MT", Title: "Transeverse mass of W", Type: "F"},
	{Expression: "KinTopWb_mass", Title: "SM Top mass", Type: "F"},
	{Expression: "KinTopZq_mass", Title: "FCNC Top mass", Type: "F"},
	{Expression: "MVAinput_bJ_DeepJetB", Title: "DeepJetBtagger of SM bjet", Type: "F"},
	{Expression: "MVAinput_qJ_DeepJetB", Title: "DeepJetBtagger of FCNC jet", Type: "F"},
	{Expression: "MVAinput_bJ_pt", Title: "Transverse momentum of SM bjet", Type: "F"},
	{Expression: "MVAinput_bJqJ_dR", Title: "dR of SM bjet and FCNC jet", Type: "F"},
	{Expression: "MVAinput_WLbJ_dPhi", Title: "dPhi of WL/SM bjet", Type: "F"},
	{Expression: "MVAinput_WLqJ_dR", Title: "dR of lepton from W and FCNC jet", Type: "F"},
	{Expression: "MVAinput_ZL1bJ_dR", Title: "dR of ZL1/SM bjet", Type: "F"},
	{Expression: "MVAinput_ZL1qJ_dR", Title: "dR of ZL1/FCNC jet", Type: "F"},
}

var stVariables = []Variable{
	{Expression: "Z_mass", Title: "Z mass", Type: "F"},
	{Expression: "TriLepton_WleptonZdPhi", Title: "dPhi of Z/WL", Type: "F"},
	{Expression: "TriLepton_WleptonZdR", Title: "dR of Z/WL", Type: "F"},
	{Expression: "W_MT", Title: "Transeverse mass of W", Type: "F"},
	{Expression: "KinTopWb_pt", Title: "Transverse momentum of SM top", Type: "F"},
	{Expression: "KinTopWb_phi", Title: "phi of SM top", Type: "F"},
	{Expression: "MVAinput_WLZL1_dPhi", Title: "dPhi of lepton from W and lepton from Z", Type: "F"},
	{Expression: "MVAinput_WLZL1_dR", Title: "dR of lepton from W and lepton from Z", Type: "F"},
	{Expression: "MVAinput_bJ_DeepJetB", Title: "DeepJetBtagger of SM bjet", Type: "F"},
	{Expression: "MVAinput_WLbJ_dPhi", Title: "dPhi of WL/SM bjet", Type: "F"},
	{Expression: "MVAinput_WLbJ_dR", Title: "dR of WL/SM bjet", Type: "F"},
	{Expression: "MVAinput_ZL1bJ_dR", Title: "dR of lepton from Z/SM bjet", Type: "F"},
}

// Spectators are carried into the engine's test tree without being trained on.
var Spectators = []string{
	"LeadingLepton_pt",
	"Z_charge",
	"nGoodLepton",
	"GoodLeptonCode",
	"MVAinput_Status",
}

// PrimaryFamily picks the family whose variables and cuts drive a selection.
// Top-pair channels take precedence over single-top ones when both are
// selected.
func PrimaryFamily(channels []Channel) Family {
	for _, ch := range channels {
		if ch.Family() == FamilyTT {
			return FamilyTT
		}
	}
	for _, ch := range channels {
		if ch.Family() == FamilyST {
			return FamilyST
		}
	}
	return FamilyUnknown
}

// Variables returns the classifier inputs for a channel selection.
func Variables(channels []Channel) []Variable {
	var src []Variable
	switch PrimaryFamily(channels) {
	case FamilyTT:
		src = ttVariables
	case FamilyST:
		src = stVariables
	default:
		return nil
	}
	out := make([]Variable, len(src))
	copy(out, src)
	return out
}

// Cuts holds the signal and background selection strings.
type Cuts struct {
	Signal     string `yaml:"signal"`
	Background string `yaml:"background"`
}

// SelectCuts returns the selection for a channel set. The full default set
// means no particular signal region, so userCut is applied to both samples
// verbatim.
func SelectCuts(channels []Channel, userCut string) Cuts {
	if IsDefaultChannelSet(channels) {
		return Cuts{Signal: userCut, Background: userCut}
	}
	switch PrimaryFamily(channels) {
	case FamilyTT:
		return Cuts{Signal: ttCut, Background: ttCut}
	case FamilyST:
		return Cuts{Signal: stCut, Background: stCut}
	}
	return Cuts{Signal: userCut, Background: userCut}
}
