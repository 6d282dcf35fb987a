package kv

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/hKV/cmd/util"
	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for hKV servers",
		Long:    "Runs every command against the server from several goroutines and reports latency percentiles and throughput per command.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfTable            = "__perf"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfOps              = 10000
	perfSkip             = make([]string, 0)
)

// percentiles reported for every test
var perfPercentiles = []float64{0.5, 0.95, 0.99}

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Tests to skip (comma separated, e.g. hset,hget)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines sending requests"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("Number of requests per test"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the hset-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "table"
	perfTestCmd.Flags().String(key, perfTable, util.WrapString("Table used for the tests, it is cleaned up afterwards"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfOps = max(viper.GetInt("ops"), 1)
	perfTable = viper.GetString("table")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfTest is a single benchmark. op is called with the index of the request.
type perfTest struct {
	name    string
	prepare func() error
	op      func(i int) error
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for hKV servers")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d, Requests per test: %d\n", perfNumThreads, perfOps)
	fmt.Println()

	keys := getKeys("perf")
	small := storage.StringValue("test")
	large := storage.BinaryValue(make([]byte, perfLargeValueSizeKB*1024))
	fill := func() error {
		pairs := make([]storage.Kvpair, len(keys))
		for i, k := range keys {
			pairs[i] = storage.NewKvpair(k, small)
		}
		_, err := rpcClient.Hmset(perfTable, pairs...)
		return err
	}
	batch := func(i int) []string {
		n := min(10, len(keys))
		out := make([]string, n)
		for j := range out {
			out[j] = keys[(i+j)%len(keys)]
		}
		return out
	}

	tests := []perfTest{
		{name: "hset", op: func(i int) error {
			_, err := rpcClient.Hset(perfTable, keys[i%len(keys)], small)
			return err
		}},
		{name: "hset-large", op: func(i int) error {
			_, err := rpcClient.Hset(perfTable, keys[i%len(keys)], large)
			return err
		}},
		{name: "hget", prepare: fill, op: func(i int) error {
			_, err := rpcClient.Hget(perfTable, keys[i%len(keys)])
			return err
		}},
		{name: "hexist", prepare: fill, op: func(i int) error {
			_, err := rpcClient.Hexist(perfTable, keys[i%len(keys)])
			return err
		}},
		{name: "hgetall", prepare: fill, op: func(int) error {
			_, err := rpcClient.Hgetall(perfTable)
			return err
		}},
		{name: "hmget", prepare: fill, op: func(i int) error {
			_, err := rpcClient.Hmget(perfTable, batch(i)...)
			return err
		}},
		{name: "hmset", op: func(i int) error {
			ks := batch(i)
			pairs := make([]storage.Kvpair, len(ks))
			for j, k := range ks {
				pairs[j] = storage.NewKvpair(k, small)
			}
			_, err := rpcClient.Hmset(perfTable, pairs...)
			return err
		}},
		{name: "hdel", op: func(i int) error {
			_, err := rpcClient.Hdel(perfTable, keys[i%len(keys)])
			return err
		}},
	}

	fmt.Println("starting tests...")

	registry := metrics.NewRegistry()
	var names []string
	for _, test := range tests {
		if shouldSkip(test.name) {
			printSkipped(test.name)
			continue
		}
		timer, elapsed, failed, err := runTest(registry, test)
		if err != nil {
			return fmt.Errorf("%s: %w", test.name, err)
		}
		printResult(test.name, timer, elapsed, failed)
		names = append(names, test.name)
	}

	// cleanup
	if _, err := rpcClient.Hmdel(perfTable, keys...); err != nil {
		util.Logger.Warningf("error cleaning up table %s: %v", perfTable, err)
	}

	if path := viper.GetString("csv"); path != "" {
		if err := writeResultsToCSV(path, registry, names); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", path)
	}

	return nil
}

// runTest sends perfOps requests from perfNumThreads goroutines and records the
// latency of every request in a timer named after the test
func runTest(registry metrics.Registry, test perfTest) (metrics.Timer, time.Duration, int64, error) {
	if test.prepare != nil {
		if err := test.prepare(); err != nil {
			return nil, 0, 0, err
		}
	}

	timer := metrics.GetOrRegisterTimer(test.name, registry)
	var (
		next   atomic.Int64
		failed atomic.Int64
		wg     sync.WaitGroup
	)

	start := time.Now()
	for range perfNumThreads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= perfOps {
					return
				}
				t := time.Now()
				if err := test.op(i); err != nil {
					failed.Add(1)
					util.Logger.Debugf("(%s) - request failed: %v", test.name, err)
					continue
				}
				timer.UpdateSince(t)
			}
		}()
	}
	wg.Wait()

	return timer, time.Since(start), failed.Load(), nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// getKeys creates perfKeySpread distinct test keys
func getKeys(prefix string) []string {
	keys := make([]string, perfKeySpread)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return keys
}

func printSkipped(test string) {
	fmt.Printf("%-14sskipped\n", test)
}

// printResult prints the result of a test in a formatted way
func printResult(test string, timer metrics.Timer, elapsed time.Duration, failed int64) {
	if timer.Count() == 0 {
		fmt.Printf("%-14sno successful requests (%d failed)\n", test, failed)
		return
	}

	ps := timer.Percentiles(perfPercentiles)
	opsPerSec := float64(timer.Count()) / max(elapsed.Seconds(), 1e-9)

	fmt.Printf("%-14smean %-12s p50 %-12s p95 %-12s p99 %-12s %8.0f ops/sec",
		test,
		time.Duration(timer.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(ps[2]),
		opsPerSec,
	)
	if failed > 0 {
		fmt.Printf("  (%d failed)", failed)
	}
	fmt.Println()
}

// writeResultsToCSV writes one row per timer of the registry
func writeResultsToCSV(csvPath string, registry metrics.Registry, tests []string) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"Test", "Count", "MeanNs", "MinNs", "MaxNs", "P50Ns", "P95Ns", "P99Ns", "RateMean",
		"Endpoints", "Serializer", "Transport", "Threads", "LargeValueSizeKB", "Keys",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	config := util.GetClientConfig()
	for _, test := range tests {
		timer, ok := registry.Get(test).(metrics.Timer)
		if !ok {
			continue
		}
		snap := timer.Snapshot()
		ps := snap.Percentiles(perfPercentiles)
		row := []string{
			test,
			strconv.FormatInt(snap.Count(), 10),
			fmt.Sprintf("%.0f", snap.Mean()),
			strconv.FormatInt(snap.Min(), 10),
			strconv.FormatInt(snap.Max(), 10),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			fmt.Sprintf("%.1f", snap.RateMean()),
			strings.Join(config.Endpoints, ";"),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %w", test, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
