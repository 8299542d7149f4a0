// Command tune searches homing difficulty parameters so that an idle player
// is caught after a target number of seconds.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/brainmaze/config"
)

// evalRow is one line of tune_log.csv.
type evalRow struct {
	Eval          int     `csv:"eval"`
	Fitness       float64 `csv:"fitness"`
	MeanCatchSec  float64 `csv:"mean_catch_sec"`
	StdCatchSec   float64 `csv:"std_catch_sec"`
	ForceDivisor  float64 `csv:"force_divisor"`
	RampInterval  float64 `csv:"ramp_interval"`
	LinearDamping float64 `csv:"linear_damping"`
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	target := flag.Float64("target", 20, "Desired catch time in simulated seconds")
	maxSec := flag.Float64("max-sec", 120, "Cap on simulated seconds per run")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *target <= 0 || *maxSec <= *target {
		log.Fatalf("need 0 < target < max-sec, got target=%v max-sec=%v", *target, *maxSec)
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector(baseCfg)
	evaluator := NewEvaluator(params, baseCfg, *target, *maxSec)

	logFile, err := os.Create(filepath.Join(*outputDir, "tune_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e18
	var bestParams []float64
	start := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			mean, std := evaluator.Last()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = append([]float64(nil), raw...)
			}

			row := []*evalRow{{
				Eval:          evalCount,
				Fitness:       fitness,
				MeanCatchSec:  mean,
				StdCatchSec:   std,
				ForceDivisor:  raw[0],
				RampInterval:  raw[1],
				LinearDamping: raw[2],
			}}
			if evalCount == 1 {
				err = gocsv.Marshal(row, logFile)
			} else {
				err = gocsv.MarshalWithoutHeaders(row, logFile)
			}
			if err != nil {
				log.Printf("failed to log evaluation: %v", err)
			}

			fmt.Printf("Eval %d/%d: catch=%.1fs±%.1f K=%.0f ramp=%.1f damp=%.2f fitness=%.4f (best=%.4f) | %s\n",
				evalCount, *maxEvals, mean, std, raw[0], raw[1], raw[2], fitness, bestFitness,
				time.Since(start).Round(time.Second))
			return fitness
		},
	}

	settings := &optimize.Settings{FuncEvaluations: *maxEvals}
	method := &optimize.NelderMead{}

	fmt.Printf("Tuning %d parameters toward a %.0fs catch, max_evals=%d\n", params.Dim(), *target, *maxEvals)
	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nDone after %d evaluations in %s\n", evalCount, time.Since(start).Round(time.Second))
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.4f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("reloading config: %v", err)
	}
	if err := params.ApplyToConfig(bestCfg, bestParams); err != nil {
		log.Fatalf("applying best parameters: %v", err)
	}
	out := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		log.Fatalf("failed to write best config: %v", err)
	}
	fmt.Printf("Best config saved to: %s\n", out)
}
