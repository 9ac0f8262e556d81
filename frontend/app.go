package main

import (
	"context"
	"flag"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/model"
	"github.com/tgehrmann/corrana/explorer"
	"github.com/tgehrmann/corrana/lib"
	"github.com/tgehrmann/corrana/lib/settings"
	"github.com/tgehrmann/corrana/receiver"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"time"
)

type config struct {
	listenAddress  string
	metricsAddress string
}

func main() {
	var metricsAddr string
	var listenAddr string
	var topRows int
	var dims int
	var coords bool
	var princCoords int
	var removeZeros bool
	var backend string
	var engine string
	var kafkaURL string
	var seed int64
	var reps int
	var oversample int
	var powerIters int
	var parquetMaxRowsPerRowGroup int
	var resultMaxAge string

	flag.StringVar(&metricsAddr, "metrics-address", ":9303", "The address the metrics endpoint binds to.")
	flag.StringVar(&listenAddr, "listen-address", ":9301", "The address the matrix and results endpoints bind to.")
	flag.IntVar(&topRows, "topRows", 0, "how many rows to keep for the factorization, ranked by variance. 0 means all")
	flag.IntVar(&dims, "dims", 0, "how many singular dimensions to keep. 0 means all")
	flag.BoolVar(&coords, "coords", true, "whether to compute standard coordinates during analysis")
	flag.IntVar(&princCoords, "princCoords", 0, "which principal coordinates to compute. 0: none, 1: rows, 2: columns, 3: both")
	flag.BoolVar(&removeZeros, "removeZeros", true, "whether to drop all-zero rows and columns before analysis")
	flag.StringVar(&backend, "backend", settings.BACKEND_DENSE, "the svd backend. Possible values: dense, randomized")
	flag.StringVar(&engine, "engine", settings.ENGINE_INPROCESS, "the permutation engine. Possible values: inprocess, kafka")
	flag.StringVar(&kafkaURL, "kafkaURL", "", "the kafka bootstrap address, required for the kafka engine")
	flag.Int64Var(&seed, "seed", 1, "the random seed for permutations and the randomized backend")
	flag.IntVar(&reps, "reps", 3, "the default number of permutation repetitions")
	flag.IntVar(&oversample, "oversample", 10, "how many extra sketch dimensions the randomized backend uses")
	flag.IntVar(&powerIters, "powerIterations", 2, "how many power iterations the randomized backend runs")
	flag.IntVar(&parquetMaxRowsPerRowGroup, "parquetMaxRowsPerRowGroup", 100000, "Number of rows per row group in Parquet. Small numbers reduce memory usage but cost more disk space; large numbers cost more memory but improve compression.")
	flag.StringVar(&resultMaxAge, "resultMaxAge", "2h", "The maximum time to keep results in memory, as a prometheus duration string.")

	flag.Parse()

	cfg := &config{
		listenAddress:  listenAddr,
		metricsAddress: metricsAddr,
	}

	caConfig := settings.CaSettings{
		TopRows:            topRows,
		Dims:               dims,
		Coords:             coords,
		PrincCoords:        princCoords,
		RemoveZeros:        removeZeros,
		Backend:            backend,
		Oversample:         oversample,
		PowerIters:         powerIters,
		Seed:               seed,
		Engine:             engine,
		KafkaURL:           kafkaURL,
		Reps:               reps,
		MaxRowsPerRowGroup: int64(parquetMaxRowsPerRowGroup),
	}

	maxAge, err := model.ParseDuration(resultMaxAge)
	if err != nil {
		log.Fatalf("failed to parse resultMaxAge %s: %v", resultMaxAge, err)
	}

	store := explorer.NewResultStore(time.Duration(maxAge))
	factorizer, err := lib.NewFactorizer(caConfig)
	if err != nil {
		log.Fatal(err)
	}
	processor, err := receiver.NewMatrixProcessor(caConfig, store)
	if err != nil {
		log.Fatal(err)
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/matrix", processor.ReceiveMatrix).Methods("POST")
	explorer.NewResultExplorer(store, factorizer).RegisterRoutes(router)

	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(cfg.metricsAddress, nil)

	server := &http.Server{
		Addr:    cfg.listenAddress,
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	go func() {
		log.Printf("correspondence analysis service listening on port %s\n", cfg.listenAddress)
		if err := server.ListenAndServe(); err != nil {
			if err != http.ErrServerClosed {
				log.Fatal(err)
			}
		}
	}()

	<-stop
	log.Println("correspondence analysis service shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
	// Analyses that are already queued still get to finish.
	if err := processor.Shutdown(); err != nil {
		log.Fatal(err)
	}
}
