package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rcliao/expert-dx/internal/model"
)

// factFlag binds a CLI flag to one field of the fact vector.
type factFlag struct {
	name  string
	usage string
	float bool
	def   float64
	apply func(f *model.Facts, fs *pflag.FlagSet, name string)
}

func boolField(set func(*model.Facts, bool)) func(*model.Facts, *pflag.FlagSet, string) {
	return func(f *model.Facts, fs *pflag.FlagSet, name string) {
		v, _ := fs.GetBool(name)
		set(f, v)
	}
}

func floatField(set func(*model.Facts, float64)) func(*model.Facts, *pflag.FlagSet, string) {
	return func(f *model.Facts, fs *pflag.FlagSet, name string) {
		v, _ := fs.GetFloat64(name)
		set(f, v)
	}
}

var factFlags = []factFlag{
	{"fever", "Body temperature in °C", true, model.DefaultTemperature, floatField(func(f *model.Facts, v float64) { f.Temperature = v })},
	{"cough", "Patient has a cough", false, 0, boolField(func(f *model.Facts, v bool) { f.Cough = v })},
	{"sore-throat", "Patient has a sore throat", false, 0, boolField(func(f *model.Facts, v bool) { f.SoreThroat = v })},
	{"headache", "Patient has a headache", false, 0, boolField(func(f *model.Facts, v bool) { f.Headache = v })},
	{"travel", "Recent travel to an endemic area", false, 0, boolField(func(f *model.Facts, v bool) { f.TravelEndemic = v })},
	{"contact", "Contact with a confirmed case", false, 0, boolField(func(f *model.Facts, v bool) { f.ContactCase = v })},
	{"resides", "Resides in an endemic area", false, 0, boolField(func(f *model.Facts, v bool) { f.ResidesEndemic = v })},
	{"summer", "Presenting during summer", false, 0, boolField(func(f *model.Facts, v bool) { f.Summer = v })},
	{"headache-intensity", "Headache intensity 0-10", true, model.DefaultIntensity, floatField(func(f *model.Facts, v float64) { f.HeadacheIntensity = v })},
	{"cough-intensity", "Cough intensity 0-10", true, model.DefaultIntensity, floatField(func(f *model.Facts, v float64) { f.CoughIntensity = v })},
}

func addFactFlags(cmd *cobra.Command) {
	for _, ff := range factFlags {
		if ff.float {
			cmd.Flags().Float64(ff.name, ff.def, ff.usage)
		} else {
			cmd.Flags().Bool(ff.name, false, ff.usage)
		}
	}
	cmd.Flags().StringP("input", "i", "", "Read facts as JSON from a file, or - for stdin")
}

// readFacts starts from defaults, overlays the --input document, then any
// fact flag the user set explicitly.
func readFacts(cmd *cobra.Command, stdin io.Reader) (model.Facts, error) {
	f := model.DefaultFacts()

	input, _ := cmd.Flags().GetString("input")
	if input != "" {
		var r io.Reader = stdin
		if input != "-" {
			file, err := os.Open(input)
			if err != nil {
				return f, fmt.Errorf("open input: %w", err)
			}
			defer file.Close()
			r = file
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return f, fmt.Errorf("read input: %w", err)
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return f, fmt.Errorf("parse facts: %w", err)
		}
	}

	overlayFactFlags(cmd, &f)
	return f, nil
}

// overlayFactFlags applies every fact flag the user set explicitly.
func overlayFactFlags(cmd *cobra.Command, f *model.Facts) {
	fs := cmd.Flags()
	for _, ff := range factFlags {
		if fs.Changed(ff.name) {
			ff.apply(f, fs, ff.name)
		}
	}
}

// pipedStdin returns stdin when it is a pipe or a redirected file, and an
// empty reader for terminals and devices such as /dev/null.
func pipedStdin() io.Reader {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return strings.NewReader("")
	}
	if m := stat.Mode(); m&os.ModeNamedPipe != 0 || m.IsRegular() {
		return os.Stdin
	}
	return strings.NewReader("")
}
