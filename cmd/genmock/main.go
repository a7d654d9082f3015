// Command genmock writes a deterministic synthetic year-loss table for demos
// and local testing. The same seed always produces the same file.
//
// Usage:
//
//	go run ./cmd/genmock -out demo-data/sample-ylt.csv -years 10000
//
// The parquet tables (counts, climate metrics, gates) come from the climate
// model pipeline and are not generated here.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/couchcryptid/climate-adjust-service/internal/domain"
)

// Atlantic landfall box, roughly Texas to the Carolinas.
const (
	minLat, maxLat = 24.5, 35.5
	minLon, maxLon = -97.5, -75.5
)

type options struct {
	years      int
	meanEvents float64
	seed       uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the YLT CSV")
	years := flag.Int("years", 10000, "number of simulated years (samples)")
	mean := flag.Float64("mean-events", 1.7, "mean landfalling events per year")
	seed := flag.Uint64("seed", 2022, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *years < 1 {
		return fmt.Errorf("-years must be positive")
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := writeYLT(f, options{years: *years, meanEvents: *mean, seed: *seed})
	if err != nil {
		return err
	}
	log.Printf("wrote %d events over %d years to %s", n, *years, *out)
	return f.Close()
}

// writeYLT emits the YLT header followed by events for years 1..opts.years.
func writeYLT(w io.Writer, opts options) (int, error) {
	cw := csv.NewWriter(w)
	cols := domain.DefaultParams().Columns
	if err := cw.Write([]string{cols.EventID, cols.Sample, cols.Lat, cols.Lon, cols.Intensity, cols.TotalLoss}); err != nil {
		return 0, err
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	eventID := 0
	for year := 1; year <= opts.years; year++ {
		for range poisson(rng, opts.meanEvents) {
			eventID++
			intensity := 33 + rng.ExpFloat64()*12 // m/s, hurricane threshold upward
			record := []string{
				strconv.Itoa(eventID),
				strconv.Itoa(year),
				formatFloat(minLat+rng.Float64()*(maxLat-minLat), 3),
				formatFloat(minLon+rng.Float64()*(maxLon-minLon), 3),
				formatFloat(intensity, 1),
				formatFloat(lossFor(rng, intensity), 0),
			}
			if err := cw.Write(record); err != nil {
				return eventID, err
			}
		}
	}
	cw.Flush()
	return eventID, cw.Error()
}

// lossFor scales loss with the cube of intensity, with lognormal noise.
func lossFor(rng *rand.Rand, intensity float64) float64 {
	base := 50 * math.Pow(intensity, 3)
	return base * math.Exp(rng.NormFloat64()*0.8)
}

// poisson draws from a Poisson distribution using Knuth's method.
func poisson(rng *rand.Rand, mean float64) int {
	l := math.Exp(-mean)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
