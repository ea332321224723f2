package tmva

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tzwi/fcncmva/internal/method"
	"github.com/tzwi/fcncmva/internal/physics"
)

const (
	// DefaultOutputName names the result file when none is given.
	DefaultOutputName = "TMVA"
	// DefaultWeightDir is the weight directory when no output name is given.
	DefaultWeightDir = "dataset"
	// DefaultOutputDir holds result files, manifests and macros.
	DefaultOutputDir = "output"
	// FactoryOptions configures the TMVA factory.
	FactoryOptions = "!V:!Silent:Color:DrawProgressBar:Transformations=I;D;P;G,D:AnalysisType=Classification"
	// LoaderName is the data-loader (and dataset) name.
	LoaderName = "dataset"
)

// JobOption customises a Job.
type JobOption func(*Job)

// WithRunID fixes the run identifier.
func WithRunID(id string) JobOption {
	return func(j *Job) {
		if id != "" {
			j.RunID = id
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) JobOption {
	return func(j *Job) {
		if now != nil {
			j.CreatedAt = now().UTC()
		}
	}
}

// WithOutputDir changes where result, manifest and macro are written.
func WithOutputDir(dir string) JobOption {
	return func(j *Job) {
		if dir != "" {
			j.OutputDir = dir
		}
	}
}

// WithVerbose enables factory verbosity.
func WithVerbose(v bool) JobOption {
	return func(j *Job) { j.Verbose = v }
}

// WithInputFile records the input-file option.
func WithInputFile(name string) JobOption {
	return func(j *Job) { j.InputFile = name }
}

// WithTrees records the signal/background tree pair.
func WithTrees(t TreeNames) JobOption {
	return func(j *Job) { j.Trees = t }
}

// Job implements Engine by recording the run.
type Job struct {
	RunID          string    `yaml:"run_id"`
	CreatedAt      time.Time `yaml:"created_at"`
	Name           string    `yaml:"name"`
	OutputDir      string    `yaml:"output_dir"`
	OutputFile     string    `yaml:"output_file"`
	WeightDir      string    `yaml:"weight_dir"`
	FactoryOptions string    `yaml:"factory_options"`
	Verbose        bool      `yaml:"verbose"`
	InputFile      string    `yaml:"input_file,omitempty"`
	Trees          TreeNames `yaml:"trees"`

	Variables        []physics.Variable `yaml:"variables"`
	Spectators       []string           `yaml:"spectators"`
	SignalWeight     string             `yaml:"signal_weight"`
	BackgroundWeight string             `yaml:"background_weight"`
	Signal           []Sample           `yaml:"signal"`
	Background       []Sample           `yaml:"background"`
	Cuts             physics.Cuts       `yaml:"cuts"`
	SplitOptions     string             `yaml:"split_options"`
	Methods          []method.Booking   `yaml:"methods"`
}

// NewJob creates a job for the output name. An empty name falls back to
// DefaultOutputName with the DefaultWeightDir weight directory; otherwise the
// weights go to result_<name>.
func NewJob(name string, opts ...JobOption) *Job {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".root")
	j := &Job{
		RunID:          uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Name:           name,
		OutputDir:      DefaultOutputDir,
		WeightDir:      DefaultWeightDir,
		FactoryOptions: FactoryOptions,
		Trees:          DefaultTreeNames,
	}
	if name == "" {
		j.Name = DefaultOutputName
	} else {
		j.WeightDir = "result_" + name
	}
	for _, opt := range opts {
		opt(j)
	}
	j.OutputFile = filepath.Join(j.OutputDir, j.Name+".root")
	return j
}

func (j *Job) AddVariable(v physics.Variable) { j.Variables = append(j.Variables, v) }

func (j *Job) AddSpectator(expression string) { j.Spectators = append(j.Spectators, expression) }

func (j *Job) SetWeightExpressions(signal, background string) {
	j.SignalWeight = signal
	j.BackgroundWeight = background
}

func (j *Job) AddSignalTree(s Sample) { j.Signal = append(j.Signal, s) }

func (j *Job) AddBackgroundTree(s Sample) { j.Background = append(j.Background, s) }

func (j *Job) PrepareTrainingAndTestTree(cuts physics.Cuts, options string) {
	j.Cuts = cuts
	j.SplitOptions = options
}

func (j *Job) BookMethod(b method.Booking) { j.Methods = append(j.Methods, b) }

// ManifestPath is <output>/<name>.job.yaml.
func (j *Job) ManifestPath() string {
	return filepath.Join(j.OutputDir, j.Name+".job.yaml")
}

// MacroPath is <output>/<name>.C.
func (j *Job) MacroPath() string {
	return filepath.Join(j.OutputDir, j.Name+".C")
}

// Manifest renders the job as YAML.
func (j *Job) Manifest() ([]byte, error) {
	data, err := yaml.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("tmva: encode manifest: %w", err)
	}
	return data, nil
}

var macroTemplate = template.Must(template.New("macro").Funcs(template.FuncMap{
	"q":     strconv.Quote,
	"float": func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
	"bool": func(v bool) string {
		if v {
			return "kTRUE"
		}
		return "kFALSE"
	},
}).Parse(`// fcncmva run {{.RunID}}
{
   TMVA::Tools::Instance();
   gSystem->mkdir({{q .OutputDir}}, kTRUE);
   TFile* outputFile = TFile::Open({{q .OutputFile}}, "RECREATE");
   TMVA::Factory* factory = new TMVA::Factory("TMVAClassification", outputFile, {{q .FactoryOptions}});
   factory->SetVerbose({{bool .Verbose}});
   TMVA::DataLoader* dataloader = new TMVA::DataLoader({{q .Loader}});
   (TMVA::gConfig().GetIONames()).fWeightFileDir = {{q .WeightDir}};
{{range .Variables}}
   dataloader->AddVariable({{q .Expression}}, {{q .Title}}, {{q .Unit}}, '{{.Type}}');
{{- end}}
{{range .Spectators}}
   dataloader->AddSpectator({{q .}});
{{- end}}

   dataloader->SetSignalWeightExpression({{q .SignalWeight}});
   dataloader->SetBackgroundWeightExpression({{q .BackgroundWeight}});

   std::vector<TFile*> inputs;
{{- range .Signal}}
   inputs.push_back(TFile::Open({{q .Path}}));
   dataloader->AddSignalTree((TTree*)inputs.back()->Get({{q .Tree}}), {{float .Weight}});
{{- end}}
{{- range .Background}}
   inputs.push_back(TFile::Open({{q .Path}}));
   dataloader->AddBackgroundTree((TTree*)inputs.back()->Get({{q .Tree}}), {{float .Weight}});
{{- end}}

   dataloader->PrepareTrainingAndTestTree(TCut({{q .Cuts.Signal}}), TCut({{q .Cuts.Background}}), {{q .SplitOptions}});
{{range .Methods}}
   factory->BookMethod(dataloader, TMVA::Types::{{.Type}}, {{q .Name}}, {{q .Options}});
{{- end}}

   factory->TrainAllMethods();
   factory->TestAllMethods();
   factory->EvaluateAllMethods();
   outputFile->Close();
   for (TFile* f : inputs) f->Close();
   printf("=== wrote root file %s\n", {{q .OutputFile}});
}
`))

// Macro renders an unnamed ROOT macro replaying the recorded calls.
func (j *Job) Macro() ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		*Job
		Loader string
	}{Job: j, Loader: LoaderName}
	if err := macroTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("tmva: render macro: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFiles writes the manifest and macro into the output directory.
func (j *Job) WriteFiles() error {
	if err := os.MkdirAll(j.OutputDir, 0o755); err != nil {
		return fmt.Errorf("tmva: ensure output dir: %w", err)
	}
	manifest, err := j.Manifest()
	if err != nil {
		return err
	}
	if err := os.WriteFile(j.ManifestPath(), manifest, 0o644); err != nil {
		return fmt.Errorf("tmva: write manifest: %w", err)
	}
	macro, err := j.Macro()
	if err != nil {
		return err
	}
	if err := os.WriteFile(j.MacroPath(), macro, 0o644); err != nil {
		return fmt.Errorf("tmva: write macro: %w", err)
	}
	return nil
}
