// dprio-compare runs repeated in-process epochs of the aggregation
// protocol and reports per-phase timings, to compare the plain flavor
// against the differentially private ones. Each epoch plays all clients
// and both servers in one process, so the timings cover computation
// only, not network transfer.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/dprio/dprio/dpnoise"
	"github.com/dprio/dprio/simulation"
)

func main() {
	flavor := flag.String("flavor", "dprio-pool", "protocol flavor: prio, dprio-pool or dprio-split")
	dimension := flag.Int("dimension", 32, "number of boolean slots per measurement")
	clients := flag.Int("clients", 1000, "number of simulated clients")
	invalid := flag.Int("invalid", 0, "number of clients submitting an invalid measurement")
	epochs := flag.Int("epochs", 10, "number of epochs to run")
	epsilon := flag.Float64("epsilon", 1, "privacy budget per epoch")
	sensitivity := flag.Float64("sensitivity", 1, "L1 sensitivity of the aggregate")
	concurrency := flag.Int("concurrency", 0, "verification fan-out, 0 for the number of CPUs")
	seed := flag.String("seed", "", "deterministic seed, empty for a time-derived one")
	csvPath := flag.String("csv", "", "append per-epoch rows to this CSV file")
	verbose := flag.Bool("v", false, "log every epoch")
	flag.Parse()

	mode, err := noiseMode(*flavor)
	if err != nil {
		log.Fatal(err)
	}

	if *seed == "" {
		*seed = fmt.Sprintf("dprio-compare/%d", time.Now().UnixNano())
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatal(err)
		}
	}

	sim, err := simulation.New(simulation.Config{
		Dimension:   *dimension,
		Clients:     *clients,
		Invalid:     *invalid,
		Noise:       mode,
		DP:          dpnoise.Config{Epsilon: *epsilon, Sensitivity: *sensitivity},
		Concurrency: *concurrency,
		Seed:        *seed,
	}, logger)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("comparison config: flavor: %v, dimension: %v, clients: %v, epochs: %v", *flavor, *dimension, *clients, *epochs)

	var rows [][]string
	phases := map[string][]float64{}
	for e := 0; e < *epochs; e++ {

		result, err := sim.RunEpoch(e)
		if err != nil {
			log.Fatal(err)
		}

		p := result.Phases
		phases["encode"] = append(phases["encode"], ms(p.Encode))
		phases["choose-noise"] = append(phases["choose-noise"], ms(p.ChooseNoise))
		phases["verify"] = append(phases["verify"], ms(p.Verify))
		phases["aggregate"] = append(phases["aggregate"], ms(p.AggregateMerge))
		phases["total"] = append(phases["total"], ms(p.Total))

		rows = append(rows, []string{
			*flavor,
			strconv.Itoa(*dimension),
			strconv.Itoa(*clients),
			fmt.Sprintf("%d ms", p.Encode.Milliseconds()),
			fmt.Sprintf("%d us", p.ChooseNoise.Microseconds()),
			fmt.Sprintf("%d ms", p.Verify.Milliseconds()),
			fmt.Sprintf("%d ms", p.AggregateMerge.Milliseconds()),
			fmt.Sprintf("%d ms", p.Total.Milliseconds()),
		})
	}

	report(phases)

	if *csvPath != "" {
		if err := appendCSV(*csvPath, rows); err != nil {
			log.Fatal(err)
		}
	}
}

func noiseMode(flavor string) (simulation.NoiseMode, error) {
	switch flavor {
	case "prio":
		return simulation.NoiseNone, nil
	case "dprio-pool":
		return simulation.NoisePool, nil
	case "dprio-split":
		return simulation.NoiseSplit, nil
	}
	return "", fmt.Errorf("unknown flavor %q (expecting prio, dprio-pool or dprio-split)", flavor)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// report prints the phase timing summary over all epochs.
func report(phases map[string][]float64) {

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"phase", "mean", "median", "stddev"})
	table.SetBorder(true)

	for _, name := range []string{"encode", "choose-noise", "verify", "aggregate", "total"} {

		samples := phases[name]

		mean, err := stats.Mean(samples)
		if err != nil {
			log.Fatal(err)
		}
		median, err := stats.Median(samples)
		if err != nil {
			log.Fatal(err)
		}
		stddev, err := stats.StandardDeviation(samples)
		if err != nil {
			log.Fatal(err)
		}

		table.Append([]string{
			name,
			fmt.Sprintf("%.2f ms", mean),
			fmt.Sprintf("%.2f ms", median),
			fmt.Sprintf("%.2f ms", stddev),
		})
	}

	table.Render()
}

// appendCSV appends one row per epoch in the column layout of the
// published comparison: flavor, dimension, clients, encode, choose
// noise, verify, aggregate and merge, total.
func appendCSV(path string, rows [][]string) error {

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
