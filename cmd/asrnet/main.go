// Command asrnet builds one of the acoustic models, prints its summary and
// output length, and optionally runs it on a random feature sequence.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/FlavioCFOliveira/asrnet/internal/config"
	"github.com/FlavioCFOliveira/asrnet/internal/models"
	"github.com/FlavioCFOliveira/asrnet/internal/net"
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// alphabet maps output indices to characters; the last index is the CTC
// blank.
var alphabet = []rune("' abcdefghijklmnopqrstuvwxyz")

func charFor(idx int) string {
	if idx < len(alphabet) {
		return string(alphabet[idx])
	}
	return "_"
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("asrnet: ")

	configPath := flag.String("config", "", "YAML configuration file")
	arch := flag.String("arch", "", "architecture to build (see -list)")
	border := flag.String("border", "", "border mode of the convolution and pooling, same or valid")
	list := flag.Bool("list", false, "list the available architectures and exit")
	summary := flag.Bool("summary", true, "print the model summary")
	length := flag.Int("length", -1, "input frames to project through the model, -1 for unknown")
	predict := flag.Int("predict", 0, "run the model on a random sequence of this many frames")
	seed := flag.Int64("seed", 0, "seed for the random feature sequence")
	writeConfig := flag.String("write-config", "", "write the effective configuration to this file")
	flag.Parse()

	if *list {
		for _, name := range models.Names() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	// explicit flags override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "arch":
			cfg.Model.Architecture = *arch
		case "border":
			mode, err := seqlen.ParseBorderMode(*border)
			if err != nil {
				log.Fatal("Invalid -border: ", err)
			}
			cfg.Model.BorderMode = mode
		case "predict":
			cfg.Predict.Frames = *predict
		case "seed":
			cfg.Predict.Seed = *seed
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			log.Fatal("Error saving config: ", err)
		}
		log.Printf("configuration written to %s", *writeConfig)
	}

	model, err := models.Build(cfg.Model.Architecture, cfg.Model.Hyperparams)
	if err != nil {
		log.Fatal("Error building model: ", err)
	}
	if *summary {
		model.Summary(os.Stdout)
	}

	in := seqlen.Unknown
	if *length >= 0 {
		in = seqlen.Of(*length)
	}
	out, err := model.OutputLength(in)
	if err != nil {
		log.Fatal("Error projecting length: ", err)
	}
	fmt.Printf("Output length for %v input frames: %v\n", in, out)

	if cfg.Predict.Frames > 0 {
		if err := runPrediction(model, cfg.Predict.Frames, cfg.Predict.Seed); err != nil {
			log.Fatal("Error running model: ", err)
		}
	}
}

// runPrediction feeds standard normal features through the model and prints
// the most probable character of every output step.
func runPrediction(model *net.Sequential, frames int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, frames)
	for t := range x {
		x[t] = make([]float64, model.InSize())
		for f := range x[t] {
			x[t][f] = rng.NormFloat64()
		}
	}

	probs, err := model.Predict(x)
	if err != nil {
		return err
	}
	fmt.Printf("Prediction: %d frames -> %d steps x %d classes\n", frames, len(probs), model.OutSize())

	var best strings.Builder
	confidence := 0.0
	for _, p := range probs {
		idx := floats.MaxIdx(p)
		best.WriteString(charFor(idx))
		confidence += p[idx]
	}
	fmt.Printf("Most probable characters: %q\n", best.String())
	if len(probs) > 0 {
		fmt.Printf("Mean step confidence: %.4f\n", confidence/float64(len(probs)))
	}
	return nil
}
