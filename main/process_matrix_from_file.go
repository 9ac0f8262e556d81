package main

import (
	"flag"
	"fmt"
	"github.com/google/uuid"
	"github.com/tgehrmann/corrana/lib"
	"github.com/tgehrmann/corrana/lib/reporter"
	"github.com/tgehrmann/corrana/lib/settings"
	"github.com/tgehrmann/corrana/lib/sources"
	"os"
	"runtime/pprof"
)

func main() {
	filename := flag.String("filename", "", "Name of the file to read")
	format := flag.String("format", "csv", "Format of the input file. Possible values: csv, parquet")
	topRows := flag.Int("topRows", 0, "how many rows to keep for the factorization, ranked by variance. 0 means all")
	dims := flag.Int("dims", 0, "how many singular dimensions to keep. 0 means all")
	princCoords := flag.Int("princCoords", 0, "which principal coordinates to compute. 0: none, 1: rows, 2: columns, 3: both")
	removeZeros := flag.Bool("removeZeros", true, "whether to drop all-zero rows and columns before analysis")
	backend := flag.String("backend", settings.BACKEND_DENSE, "the svd backend. Possible values: dense, randomized")
	seed := flag.Int64("seed", 1, "the random seed for permutations and the randomized backend")
	method := flag.String("method", "", "dimension selection to report on. Possible values: avg_inertia, maj_inertia, elbow_rule, scree_plot")
	reps := flag.Int("reps", 3, "number of permutation repetitions for the elbow rule and the scree plot")
	outputDir := flag.String("outputDir", "", "directory to write result files to. Empty means no files")
	outputFormat := flag.String("outputFormat", "csv", "Format of the result files. Possible values: csv, parquet")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile here")
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			panic(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	var source sources.MatrixSource
	switch *format {
	case "csv":
		source = &sources.CsvSource{Path: *filename}
	case "parquet":
		source = &sources.ParquetSource{Path: *filename}
	default:
		panic(fmt.Errorf("unsupported input format %s", *format))
	}

	matrix, err := source.Read()
	if err != nil {
		panic(err)
	}

	config := settings.CaSettings{
		TopRows:     *topRows,
		Dims:        *dims,
		Coords:      true,
		PrincCoords: *princCoords,
		RemoveZeros: *removeZeros,
		Backend:     *backend,
		Seed:        *seed,
		Reps:        *reps,
	}
	config = config.ApplyDefaults()

	factorizer, err := lib.NewFactorizer(config)
	if err != nil {
		panic(err)
	}
	result, err := factorizer.Factorize(matrix)
	if err != nil {
		panic(err)
	}

	fmt.Printf("analysed a %d by %d matrix from %s\n", matrix.Rows(), matrix.Cols(), *filename)
	fmt.Printf("kept %d of %d rows, total inertia %f\n", result.TopRows, matrix.Rows(), result.TotInertia)
	explained := result.ExplainedInertia()
	for i, label := range result.DimLabels {
		fmt.Printf("%s: singular value %f, %.2f%% of inertia\n", label, result.D[i], explained[i])
	}

	switch *method {
	case "":
		// Nothing to report.
	case settings.METHOD_SCREE_PLOT:
		summary, err := factorizer.PermutedInertia(matrix, result, *reps)
		if err != nil {
			panic(err)
		}
		table := lib.ScreeTable(result, summary)
		fmt.Printf("scree table (average inertia %.2f%%):\n", table.AvgInertia)
		for i, label := range table.DimLabels {
			fmt.Printf("%s: %.2f%%", label, table.Inertia[i])
			for _, rep := range table.Permuted {
				fmt.Printf(" %.2f%%", rep[i])
			}
			fmt.Printf("\n")
		}
	default:
		picked, err := factorizer.PickDims(*method, result, matrix, *reps)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s suggests keeping %d dimensions\n", *method, picked)
	}

	if *outputDir != "" {
		var rep reporter.Reporter
		switch *outputFormat {
		case "csv":
			rep = reporter.NewCsvReporter()
		case "parquet":
			rep = reporter.NewParquetReporter(config.MaxRowsPerRowGroup)
		default:
			panic(fmt.Errorf("unsupported output format %s", *outputFormat))
		}
		resultID := uuid.New().String()
		rep.Initialize(resultID, *outputDir)
		if err := rep.AddResult(result); err != nil {
			panic(err)
		}
		if err := rep.Flush(); err != nil {
			panic(err)
		}
		fmt.Printf("wrote result %s to %s\n", resultID, *outputDir)
	}
}
