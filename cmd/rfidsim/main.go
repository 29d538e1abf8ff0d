// Command rfidsim runs one or more EPC Gen2 RFID inventory simulations
// and reports the resulting inventory/read-TID probabilities and
// average rounds per tag (spec.md §6).
package main

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/fatih/structs"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/hanyangzhao/rfidsim/internal/epcstd"
	"github.com/hanyangzhao/rfidsim/internal/sim"
)

var log = logrus.StandardLogger()

var (
	app   = kingpin.New("rfidsim", "A discrete-event EPC Class-1 Gen-2 UHF RFID air-interface simulator.")
	start = app.Command("start", "Simulate tag inventory over one or more parameter combinations.")

	speeds         = start.Flag("speed", "Tag speed in km/h (repeatable for a sweep).").Default("10.0").Floats()
	encoding       = start.Flag("encoding", "Tag encoding symbols-per-bit.").Default("1").Enum("1", "2", "4", "8")
	tari           = start.Flag("tari", "Tari in microseconds.").Default("6.25").Enum("6.25", "12.5", "18.75", "25")
	tidWordSizes   = start.Flag("tid-word-size", "TID bank size in 16-bit words (repeatable for a sweep).").Default("8").Ints()
	altitudes      = start.Flag("altitude", "Reader antenna altitude in meters (repeatable for a sweep).").Default("5.0").Floats()
	readerOffsets  = start.Flag("reader-offset", "Reader antenna horizontal offset in meters (repeatable for a sweep).").Default("5.0").Floats()
	tagOffsets     = start.Flag("tag-offset", "Tag path horizontal offset in meters (repeatable for a sweep).").Default("5.0").Floats()
	powers         = start.Flag("power", "Reader Tx power in dBm (repeatable for a sweep).").Default("31.5").Floats()
	numTags        = start.Flag("num-tags", "Number of tag lifetimes to simulate.").Default("10").Int()
	jobs           = start.Flag("jobs", "Parallel workers for sweeps.").Default("1").Int()
	verbose        = start.Flag("verbose", "Print the configured model before simulating.").Bool()
)

// variadicFlag names one of the repeatable flags and how many values it
// was given.
type variadicFlag struct {
	name string
	n    int
}

func main() {
	app.Version("1.0.0")
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case start.FullCommand():
		if err := runStart(); err != nil {
			log.Error(err)
			os.Exit(1)
		}
	}
}

func runStart() error {
	candidates := []variadicFlag{
		{"speed", len(*speeds)},
		{"tid-word-size", len(*tidWordSizes)},
		{"altitude", len(*altitudes)},
		{"reader-offset", len(*readerOffsets)},
		{"tag-offset", len(*tagOffsets)},
		{"power", len(*powers)},
	}
	var repeated []variadicFlag
	for _, c := range candidates {
		if c.n > 1 {
			repeated = append(repeated, c)
		}
	}
	if len(repeated) > 1 {
		names := make([]string, len(repeated))
		for i, r := range repeated {
			names[i] = r.name
		}
		return fmt.Errorf("rfidsim: only one flag may be repeated for a sweep, got %v", names)
	}

	variadicName := ""
	numVariants := 1
	if len(repeated) == 1 {
		variadicName = repeated[0].name
		numVariants = repeated[0].n
	}

	m, err := tariMicros(*tari)
	if err != nil {
		return err
	}
	enc, err := encodingFromFlag(*encoding)
	if err != nil {
		return err
	}

	type variant struct {
		label    string
		scenario sim.Scenario
	}
	variants := make([]variant, numVariants)
	for i := 0; i < numVariants; i++ {
		s := sim.StandardScenario()
		s.Tari = m
		s.TagEncoding = enc
		s.NumTags = *numTags
		s.Seed = int64(i) + 1

		s.TagVelocity = pick(*speeds, i) / 3.6
		s.TIDWordCount = uint8(pickInt(*tidWordSizes, i))
		s.ReaderAntennaPos.Z = pick(*altitudes, i)
		s.ReaderAntennaPos.X = pick(*readerOffsets, i)
		s.TagStartPos.X = pick(*tagOffsets, i)
		s.ReaderTxPowerDBm = pick(*powers, i)

		var label string
		switch variadicName {
		case "speed":
			label = fmt.Sprintf("%g", pick(*speeds, i))
		case "tid-word-size":
			label = fmt.Sprintf("%d", pickInt(*tidWordSizes, i))
		case "altitude":
			label = fmt.Sprintf("%g", pick(*altitudes, i))
		case "reader-offset":
			label = fmt.Sprintf("%g", pick(*readerOffsets, i))
		case "tag-offset":
			label = fmt.Sprintf("%g", pick(*tagOffsets, i))
		case "power":
			label = fmt.Sprintf("%g", pick(*powers, i))
		default:
			label = "-"
		}
		variants[i] = variant{label: label, scenario: s}
	}

	if *verbose {
		printScenario(variants[0].scenario)
	}

	results := make([]sim.RunResult, numVariants)
	sem := make(chan struct{}, *jobs)
	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, s sim.Scenario) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = sim.Simulate(s)
		}(i, v.scenario)
	}
	wg.Wait()

	labels := make([]string, numVariants)
	for i, v := range variants {
		labels[i] = v.label
	}
	printResults(variadicName, labels, results)
	return nil
}

func pick(vs []float64, i int) float64 {
	if i < len(vs) {
		return vs[i]
	}
	return vs[0]
}

func pickInt(vs []int, i int) int {
	if i < len(vs) {
		return vs[i]
	}
	return vs[0]
}

func tariMicros(choice string) (float64, error) {
	switch choice {
	case "6.25":
		return 6.25e-6, nil
	case "12.5":
		return 12.5e-6, nil
	case "18.75":
		return 18.75e-6, nil
	case "25":
		return 25e-6, nil
	default:
		return 0, fmt.Errorf("rfidsim: unsupported Tari %q", choice)
	}
}

func encodingFromFlag(choice string) (epcstd.TagEncoding, error) {
	switch choice {
	case "1":
		return epcstd.FM0, nil
	case "2":
		return epcstd.M2, nil
	case "4":
		return epcstd.M4, nil
	case "8":
		return epcstd.M8, nil
	default:
		return 0, fmt.Errorf("rfidsim: unsupported encoding %q", choice)
	}
}

func printScenario(s sim.Scenario) {
	m := structs.Map(s)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "field\tvalue")
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%v\n", k, m[k])
	}
	w.Flush()
	fmt.Println()
}

func printResults(variadicName string, labels []string, results []sim.RunResult) {
	column := variadicName
	if column == "" {
		column = "variadic"
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tread_tid_prob\tinventory_prob\trounds_per_tag\n", column)
	for i, r := range results {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\n", labels[i], r.ReadTIDProbability, r.InventoryProbability, r.AvgRoundsPerTag)
	}
	w.Flush()
}
