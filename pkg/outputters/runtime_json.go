package outputters

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"
)

// NamedOutputData pairs a value with the file it should be written to.
// Outputters that understand it route the data to OutputFilename; others
// may unwrap it or ignore it.
type NamedOutputData struct {
	OutputFilename string
	Data           any
}

// NewNamedOutputData wraps data with a destination filename.
func NewNamedOutputData(data any, filename string) NamedOutputData {
	return NamedOutputData{OutputFilename: filename, Data: data}
}

const defaultOutfile = "out.json"

// RuntimeJSONOutputter allows specifying the output file at runtime
// rather than at initialization time.
type RuntimeJSONOutputter struct {
	*chain.BaseOutputter
	indent  int
	output  []any
	outfile string
}

func NewRuntimeJSONOutputter(configs ...cfg.Config) chain.Outputter {
	j := &RuntimeJSONOutputter{}
	j.BaseOutputter = chain.NewBaseOutputter(j, configs...)
	return j
}

func (j *RuntimeJSONOutputter) Initialize() error {
	outfile, err := cfg.As[string](j.Arg("jsonoutfile"))
	if err != nil {
		outfile = defaultOutfile
	}
	j.outfile = outfile

	indent, err := cfg.As[int](j.Arg("indent"))
	if err != nil {
		indent = 0
	}
	j.indent = indent

	slog.Debug("initialized runtime JSON outputter", "default_file", j.outfile, "indent", j.indent)
	return nil
}

// Output buffers a value in memory until Complete writes the file.
func (j *RuntimeJSONOutputter) Output(val any) error {
	if outputData, ok := val.(NamedOutputData); ok {
		if outputData.OutputFilename != "" && j.outfile == defaultOutfile {
			j.SetOutputFile(outputData.OutputFilename)
		}
		j.output = append(j.output, outputData.Data)
	} else {
		j.output = append(j.output, val)
	}
	return nil
}

// SetOutputFile changes the output file at runtime.
func (j *RuntimeJSONOutputter) SetOutputFile(filename string) {
	j.outfile = filename
	slog.Debug("changed JSON output file", "filename", filename)
}

func (j *RuntimeJSONOutputter) Complete() error {
	slog.Debug("writing JSON output", "filename", j.outfile, "entries", len(j.output))

	if dir := filepath.Dir(j.outfile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory %s: %w", dir, err)
		}
	}

	writer, err := os.Create(j.outfile)
	if err != nil {
		return fmt.Errorf("error creating JSON file %s: %w", j.outfile, err)
	}
	defer writer.Close()

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", strings.Repeat(" ", j.indent))

	return encoder.Encode(j.output)
}

func (j *RuntimeJSONOutputter) Params() []cfg.Param {
	return []cfg.Param{
		cfg.NewParam[string]("jsonoutfile", "the default file to write the JSON to (can be changed at runtime)").WithDefault(defaultOutfile),
		cfg.NewParam[int]("indent", "the number of spaces to use for the JSON indentation").WithDefault(0),
	}
}
